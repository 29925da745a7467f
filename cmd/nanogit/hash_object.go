package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/nanogit/internal/objects"
	"github.com/fenilsonani/nanogit/pkg/vcs"
)

func newHashObjectCommand() *cobra.Command {
	var (
		write bool
		stdin bool
	)

	cmd := &cobra.Command{
		Use:   "hash-object [file...]",
		Short: "Compute the object ID of a blob and optionally write it to the store",
		Long:  "Computes the object ID for a blob and optionally writes it to the object database",
		RunE: func(cmd *cobra.Command, args []string) error {
			var repo *vcs.Repository
			if write {
				repoPath, err := findRepository()
				if err != nil {
					return fmt.Errorf("not in a nanogit repository: %w", err)
				}
				repo, err = vcs.Open(repoPath)
				if err != nil {
					return fmt.Errorf("not in a nanogit repository: %w", err)
				}
			}

			if stdin || len(args) == 0 {
				id, err := hashObject(repo, cmd.InOrStdin(), write)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), id)
				return nil
			}

			for _, path := range args {
				file, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", path, err)
				}

				id, err := hashObject(repo, file, write)
				file.Close()
				if err != nil {
					return fmt.Errorf("failed to hash %s: %w", path, err)
				}

				fmt.Fprint(cmd.OutOrStdout(), id)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Actually write the object into the object database")
	cmd.Flags().BoolVar(&stdin, "stdin", false, "Read from stdin instead of from a file")

	return cmd
}

func hashObject(repo *vcs.Repository, reader io.Reader, write bool) (objects.ObjectID, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return objects.ObjectID{}, fmt.Errorf("failed to read data: %w", err)
	}

	if repo != nil && write {
		return repo.HashObject(data, objects.TypeBlob, true)
	}

	obj := objects.NewBlob(data)
	return obj.ID(), nil
}
