// Package refs manages the two ref-related files this implementation
// supports: HEAD (read and resolved through its symbolic ref, but never
// written here) and refs/heads/master. No other refs, and no reflog, are in
// scope.
package refs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fenilsonani/nanogit/internal/objects"
)

const masterRefPath = "refs/heads/master"

// SetMaster writes refs/heads/master to point at id, creating the parent
// directory if needed.
func SetMaster(gitDir string, id objects.ObjectID) error {
	path := filepath.Join(gitDir, masterRefPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create refs/heads directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id.String()+"\n"), 0644); err != nil {
		return fmt.Errorf("write %s: %w", masterRefPath, err)
	}
	return nil
}

// Master reads the commit ID refs/heads/master currently points at.
func Master(gitDir string) (objects.ObjectID, error) {
	path := filepath.Join(gitDir, masterRefPath)
	data, err := os.ReadFile(path)
	if err != nil {
		return objects.ObjectID{}, fmt.Errorf("read %s: %w", masterRefPath, err)
	}
	return objects.NewObjectID(strings.TrimSpace(string(data)))
}

// Head reads HEAD and resolves it through its "ref: <path>" indirection to
// the commit ID it ultimately points at. HEAD is always symbolic in this
// implementation (detached HEAD is out of scope).
func Head(gitDir string) (objects.ObjectID, error) {
	data, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return objects.ObjectID{}, fmt.Errorf("read HEAD: %w", err)
	}

	line := strings.TrimSpace(string(data))
	target := strings.TrimPrefix(line, "ref: ")
	if target == line {
		return objects.ObjectID{}, fmt.Errorf("HEAD is detached, which is not supported: %q", line)
	}

	path := filepath.Join(gitDir, target)
	refData, err := os.ReadFile(path)
	if err != nil {
		return objects.ObjectID{}, fmt.Errorf("read %s: %w", target, err)
	}
	return objects.NewObjectID(strings.TrimSpace(string(refData)))
}
