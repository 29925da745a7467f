package objects

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ObjectType represents the type of a git object
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// IsValid returns true if the object type is valid
func (t ObjectType) IsValid() bool {
	switch t {
	case TypeBlob, TypeTree, TypeCommit:
		return true
	default:
		return false
	}
}

// Object is the base interface for all git objects
type Object interface {
	Type() ObjectType
	Size() int64
	ID() ObjectID
	Serialize() ([]byte, error)
}

// Signature represents author/committer information
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// String returns the signature in git format
func (s Signature) String() string {
	timestamp := s.When.Unix()
	tz := s.When.Format("-0700")
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, timestamp, tz)
}

// ParseSignature parses a signature line in the form
// "<name> <<email>> <unix-ts> <tz-offset>", as produced by String.
func ParseSignature(data []byte) (*Signature, error) {
	line := string(bytes.TrimRight(data, "\n"))

	open := strings.LastIndex(line, "<")
	close := strings.LastIndex(line, ">")
	if open < 0 || close < open {
		return nil, fmt.Errorf("%w: signature missing email: %q", ErrMalformedObject, line)
	}

	name := strings.TrimSpace(line[:open])
	email := line[open+1 : close]

	rest := strings.TrimSpace(line[close+1:])
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return nil, fmt.Errorf("%w: signature missing timestamp/tz: %q", ErrMalformedObject, line)
	}

	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad signature timestamp %q: %v", ErrMalformedObject, fields[0], err)
	}

	when, err := time.Parse("-0700", fields[1])
	if err != nil {
		return nil, fmt.Errorf("%w: bad signature tz %q: %v", ErrMalformedObject, fields[1], err)
	}
	loc := when.Location()

	return &Signature{
		Name:  name,
		Email: email,
		When:  time.Unix(ts, 0).In(loc),
	}, nil
}