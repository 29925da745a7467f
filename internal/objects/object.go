package objects

import (
	"bytes"
	"fmt"

	"github.com/fenilsonani/nanogit/internal/delta"
)

// ApplyDelta reconstructs a full object by applying a ref-delta instruction
// stream against the raw bytes of its base object (the base's on-disk
// payload, i.e. without the "<type> <size>\0" header). The base determines
// the result's type, since ref-delta entries never carry one of their own.
func ApplyDelta(baseType ObjectType, basePayload []byte, d *delta.Delta) (Object, error) {
	restored, err := d.Restore(basePayload)
	if err != nil {
		return nil, fmt.Errorf("restore delta: %w", err)
	}

	if len(restored) != d.TargetSize {
		return nil, fmt.Errorf("%w: delta target size mismatch: expected %d, got %d", ErrMalformedObject, d.TargetSize, len(restored))
	}

	id := ComputeHash(baseType, restored)

	switch baseType {
	case TypeBlob:
		return ParseBlob(id, restored), nil
	case TypeTree:
		return ParseTree(id, restored)
	case TypeCommit:
		return ParseCommit(id, restored)
	default:
		return nil, fmt.Errorf("%w: unsupported delta base type %q", ErrMalformedObject, baseType)
	}
}

// parseLooseHeader splits the "<type> <size>\0" loose-object header off of
// fullData, returning the type, declared size, and remaining payload.
func parseLooseHeader(fullData []byte) (ObjectType, int, []byte, error) {
	nullIdx := bytes.IndexByte(fullData, 0)
	if nullIdx == -1 {
		return "", 0, nil, fmt.Errorf("%w: no null byte in object header", ErrMalformedObject)
	}

	header := string(fullData[:nullIdx])
	var objType string
	var size int
	if _, err := fmt.Sscanf(header, "%s %d", &objType, &size); err != nil {
		return "", 0, nil, fmt.Errorf("%w: invalid object header %q", ErrMalformedObject, header)
	}

	return ObjectType(objType), size, fullData[nullIdx+1:], nil
}
