package workdir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenilsonani/nanogit/internal/objects"
)

func TestMaterializeNestedTree(t *testing.T) {
	store := map[objects.ObjectID]objects.Object{}
	add := func(o objects.Object) objects.ObjectID {
		store[o.ID()] = o
		return o.ID()
	}

	fileBlob := objects.NewBlob([]byte("hello"))
	add(fileBlob)

	scriptBlob := objects.NewBlob([]byte("#!/bin/sh\necho hi\n"))
	add(scriptBlob)

	subTree := objects.NewTree()
	require.NoError(t, subTree.AddEntry(objects.ModeBlob, "nested.txt", fileBlob.ID()))
	add(subTree)

	rootTree := objects.NewTree()
	require.NoError(t, rootTree.AddEntry(objects.ModeTree, "subdir", subTree.ID()))
	require.NoError(t, rootTree.AddEntry(objects.ModeExec, "run.sh", scriptBlob.ID()))
	add(rootTree)

	dir := t.TempDir()
	lookup := func(id objects.ObjectID) (objects.Object, bool) {
		o, ok := store[id]
		return o, ok
	}

	require.NoError(t, Materialize(dir, rootTree.ID(), lookup))

	nested, err := os.ReadFile(filepath.Join(dir, "subdir", "nested.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(nested))

	info, err := os.Stat(filepath.Join(dir, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestMaterializeMissingObjectFails(t *testing.T) {
	rootTree := objects.NewTree()
	require.NoError(t, rootTree.AddEntry(objects.ModeBlob, "missing.txt", objects.ObjectID{0x01}))

	lookup := func(id objects.ObjectID) (objects.Object, bool) {
		if id == rootTree.ID() {
			return rootTree, true
		}
		return nil, false
	}

	err := Materialize(t.TempDir(), rootTree.ID(), lookup)
	assert.Error(t, err)
}
