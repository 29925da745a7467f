package vcs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fenilsonani/nanogit/internal/fetch"
	"github.com/fenilsonani/nanogit/internal/metrics"
	"github.com/fenilsonani/nanogit/internal/nanolog"
	"github.com/fenilsonani/nanogit/internal/objects"
	"github.com/fenilsonani/nanogit/internal/pack"
	"github.com/fenilsonani/nanogit/internal/refs"
	"github.com/fenilsonani/nanogit/internal/workdir"
)

// Clone discovers refs/heads/master at remoteURL, fetches and decodes its
// pack, writes every resulting object into a freshly initialized
// repository at path, and checks out the commit's tree into the working
// directory.
func Clone(ctx context.Context, remoteURL, path string) (*Repository, error) {
	start := time.Now()
	defer func() {
		metrics.Default().CloneDuration.Observe(time.Since(start).Seconds())
	}()

	baseURL, err := fetch.ParseGitURL(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote URL: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve destination path: %w", err)
	}

	repo, err := Init(absPath)
	if err != nil {
		return nil, fmt.Errorf("initialize destination repository: %w", err)
	}

	client := fetch.New(baseURL)

	nanolog.Log.WithFields(map[string]interface{}{"url": baseURL}).Info("discovering refs/heads/master")
	master, err := client.DiscoverMasterRef(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover refs/heads/master: %w", err)
	}

	nanolog.Log.WithFields(map[string]interface{}{"commit": master.Short()}).Info("fetching pack")
	packBytes, err := client.FetchPack(ctx, master)
	if err != nil {
		return nil, fmt.Errorf("fetch pack: %w", err)
	}

	entries, err := pack.Decode(packBytes)
	if err != nil {
		return nil, fmt.Errorf("decode pack: %w", err)
	}

	resolvedObjects, err := pack.Resolve(entries)
	if err != nil {
		return nil, fmt.Errorf("resolve pack deltas: %w", err)
	}

	byHash := make(map[objects.ObjectID]objects.Object, len(resolvedObjects))
	for _, obj := range resolvedObjects {
		byHash[obj.ID()] = obj
		if err := repo.WriteObject(obj); err != nil {
			return nil, fmt.Errorf("write object %s: %w", obj.ID().Short(), err)
		}
	}

	commitObj, ok := byHash[master]
	if !ok {
		return nil, fmt.Errorf("clone: commit %s named by refs/heads/master was not present in the fetched pack", master.Short())
	}
	commit, ok := commitObj.(*objects.Commit)
	if !ok {
		return nil, fmt.Errorf("clone: object %s is not a commit", master.Short())
	}

	if err := refs.SetMaster(repo.GitDir(), master); err != nil {
		return nil, fmt.Errorf("update refs/heads/master: %w", err)
	}

	lookup := func(id objects.ObjectID) (objects.Object, bool) {
		if obj, ok := byHash[id]; ok {
			return obj, true
		}
		obj, err := repo.ReadObject(id)
		return obj, err == nil
	}

	if err := workdir.Materialize(repo.Path(), commit.Tree(), lookup); err != nil {
		return nil, fmt.Errorf("materialize working tree: %w", err)
	}

	nanolog.Log.WithFields(map[string]interface{}{
		"objects": len(resolvedObjects),
		"commit":  master.Short(),
	}).Info("clone complete")

	return repo, nil
}
