package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/nanogit/internal/objects"
	"github.com/fenilsonani/nanogit/pkg/vcs"
)

func newWriteTreeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write-tree",
		Short: "Create a tree object from the current working directory",
		Long:  "Walks the working directory, writes a blob for every file and a tree for every directory, and prints the root tree's object ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repoPath, err := findRepository()
			if err != nil {
				return fmt.Errorf("not in a nanogit repository: %w", err)
			}
			repo, err := vcs.Open(repoPath)
			if err != nil {
				return fmt.Errorf("not in a nanogit repository: %w", err)
			}

			tree, err := objects.NewTreeFromPath(repo.Storage(), repo.Path())
			if err != nil {
				return fmt.Errorf("failed to build tree: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), tree.ID())
			return nil
		},
	}

	return cmd
}
