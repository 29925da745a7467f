package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/nanogit/pkg/vcs"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Initialize a new repository",
		Long:  "Create an empty nanogit repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("failed to get absolute path: %w", err)
			}

			repo, err := vcs.Init(absPath)
			if err != nil {
				return fmt.Errorf("failed to initialize repository: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty nanogit repository in %s\n", repo.GitDir())
			return nil
		},
	}

	return cmd
}
