package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/nanogit/internal/objects"
	"github.com/fenilsonani/nanogit/pkg/vcs"
)

func newCommitTreeCommand() *cobra.Command {
	var (
		parentHashes []string
		message      string
	)

	cmd := &cobra.Command{
		Use:   "commit-tree <tree>",
		Short: "Create a new commit object from a tree and a commit message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repoPath, err := findRepository()
			if err != nil {
				return fmt.Errorf("not in a nanogit repository: %w", err)
			}
			repo, err := vcs.Open(repoPath)
			if err != nil {
				return fmt.Errorf("not in a nanogit repository: %w", err)
			}

			treeID, err := objects.NewObjectID(args[0])
			if err != nil {
				return fmt.Errorf("invalid tree ID: %w", err)
			}

			parents := make([]objects.ObjectID, 0, len(parentHashes))
			for _, p := range parentHashes {
				id, err := objects.NewObjectID(p)
				if err != nil {
					return fmt.Errorf("invalid parent ID %q: %w", p, err)
				}
				parents = append(parents, id)
			}

			if message == "" {
				data, err := readAllStdinIfPiped(cmd)
				if err != nil {
					return err
				}
				message = data
			}
			if message == "" {
				return fmt.Errorf("%w: no commit message provided (use -m)", ErrInvalidArgs)
			}
			if !strings.HasSuffix(message, "\n") {
				message += "\n"
			}

			sig := placeholderSignature()

			commit, err := repo.CreateCommit(treeID, parents, sig, sig, message)
			if err != nil {
				return fmt.Errorf("failed to create commit: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), commit.ID())
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&parentHashes, "parent", "p", nil, "ID of a parent commit object")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message")

	return cmd
}

func readAllStdinIfPiped(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		info, err := f.Stat()
		if err != nil || (info.Mode()&os.ModeCharDevice) != 0 {
			return "", nil
		}
	}
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := in.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			break
		}
	}
	return sb.String(), nil
}

// placeholderAuthorName and placeholderAuthorEmail are fixed at compile
// time; no environment variable is consulted for commit identity.
const (
	placeholderAuthorName  = "nanogit"
	placeholderAuthorEmail = "nanogit@localhost"
)

// placeholderSignature returns the fixed author/committer identity every
// commit is stamped with, so commit-tree is reproducible for a given
// tree/parent/message triple regardless of when or where it runs.
func placeholderSignature() objects.Signature {
	return objects.Signature{
		Name:  placeholderAuthorName,
		Email: placeholderAuthorEmail,
		When:  time.Unix(0, 0).UTC(),
	}
}
