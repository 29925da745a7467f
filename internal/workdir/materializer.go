// Package workdir reconstructs a working tree on disk from a commit's tree
// object and the flat set of objects a clone pulled down.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fenilsonani/nanogit/internal/nanolog"
	"github.com/fenilsonani/nanogit/internal/objects"
)

// Lookup resolves an object by ID from whatever in-memory set or store a
// caller has already populated (e.g. the result of pack.Resolve).
type Lookup func(objects.ObjectID) (objects.Object, bool)

// Materialize writes the tree rooted at rootTree into dir, creating
// directories for Tree entries and files (with mode bits honored) for
// Blob entries. Parent directories are always created before their
// children, since the traversal is top-down by construction.
func Materialize(dir string, rootTree objects.ObjectID, lookup Lookup) error {
	obj, ok := lookup(rootTree)
	if !ok {
		return fmt.Errorf("materialize: root tree %s not found in resolved object set", rootTree.Short())
	}
	tree, ok := obj.(*objects.Tree)
	if !ok {
		return fmt.Errorf("materialize: root object %s is not a tree", rootTree.Short())
	}

	return writeTree(dir, tree, lookup)
}

func writeTree(dir string, tree *objects.Tree, lookup Lookup) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	for _, entry := range tree.Entries() {
		path := filepath.Join(dir, entry.Name)

		switch entry.Mode {
		case objects.ModeTree:
			obj, ok := lookup(entry.ID)
			if !ok {
				return fmt.Errorf("materialize: tree entry %s (%s) missing from resolved object set", entry.Name, entry.ID.Short())
			}
			subtree, ok := obj.(*objects.Tree)
			if !ok {
				return fmt.Errorf("materialize: entry %s is mode tree but object %s is not a Tree", entry.Name, entry.ID.Short())
			}
			if err := writeTree(path, subtree, lookup); err != nil {
				return err
			}

		case objects.ModeSymlink:
			blob, err := lookupBlob(lookup, entry)
			if err != nil {
				return err
			}
			if err := os.Symlink(string(blob.Data()), path); err != nil {
				return fmt.Errorf("create symlink %s: %w", path, err)
			}

		case objects.ModeBlob, objects.ModeExec:
			blob, err := lookupBlob(lookup, entry)
			if err != nil {
				return err
			}
			mode := os.FileMode(0644)
			if entry.Mode == objects.ModeExec {
				mode = 0755
			}
			if err := os.WriteFile(path, blob.Data(), mode); err != nil {
				return fmt.Errorf("write file %s: %w", path, err)
			}

		default:
			return fmt.Errorf("materialize: unsupported tree entry mode %o for %s", entry.Mode, entry.Name)
		}

		nanolog.Log.WithFields(map[string]interface{}{"path": path}).Debug("materialized entry")
	}

	return nil
}

func lookupBlob(lookup Lookup, entry objects.TreeEntry) (*objects.Blob, error) {
	obj, ok := lookup(entry.ID)
	if !ok {
		return nil, fmt.Errorf("materialize: blob entry %s (%s) missing from resolved object set", entry.Name, entry.ID.Short())
	}
	blob, ok := obj.(*objects.Blob)
	if !ok {
		return nil, fmt.Errorf("materialize: entry %s is not a blob", entry.Name)
	}
	return blob, nil
}
