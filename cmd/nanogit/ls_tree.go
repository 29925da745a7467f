package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/nanogit/internal/objects"
	"github.com/fenilsonani/nanogit/pkg/vcs"
)

func newLsTreeCommand() *cobra.Command {
	var nameOnly bool

	cmd := &cobra.Command{
		Use:   "ls-tree [--name-only] <tree>",
		Short: "List the contents of a tree object",
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

			id, err := objects.NewObjectID(args[0])
			if err != nil {
				return fmt.Errorf("invalid object ID: %w", err)
			}

			obj, err := repo.ReadObject(id)
			if err != nil {
				return fmt.Errorf("failed to read object: %w", err)
			}

			tree, ok := obj.(*objects.Tree)
			if !ok {
				return fmt.Errorf("%s is a %s, not a tree", id, obj.Type())
			}

			out := cmd.OutOrStdout()
			for _, entry := range tree.Entries() {
				if nameOnly {
					fmt.Fprintln(out, entry.Name)
					continue
				}

				kind := objects.TypeBlob
				if entry.Mode == objects.ModeTree {
					kind = objects.TypeTree
				}
				fmt.Fprintf(out, "%06o %s %s\t%s\n", entry.Mode, kind, entry.ID, entry.Name)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "List only the names of tree entries")

	return cmd
}
