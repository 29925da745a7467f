package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/nanogit/internal/objects"
	"github.com/fenilsonani/nanogit/pkg/vcs"
)

func newCatFileCommand() *cobra.Command {
	var (
		showType    bool
		showSize    bool
		checkExists bool
		pretty      bool
	)

	cmd := &cobra.Command{
		Use:   "cat-file [options] <object>",
		Short: "Provide content or type and size information for repository objects",
		Long:  "Display the content, type, or size of repository objects",
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

			if checkExists {
				if !repo.HasObject(id) {
					os.Exit(1)
				}
				return nil
			}

			obj, err := repo.ReadObject(id)
			if err != nil {
				return fmt.Errorf("failed to read object: %w", err)
			}

			switch {
			case showType:
				fmt.Fprintln(cmd.OutOrStdout(), obj.Type())
			case showSize:
				fmt.Fprintln(cmd.OutOrStdout(), obj.Size())
			case pretty:
				data, err := obj.Serialize()
				if err != nil {
					return fmt.Errorf("failed to serialize object: %w", err)
				}
				cmd.OutOrStdout().Write(data)
			default:
				return fmt.Errorf("%w: must specify one of -t, -s, -e, or -p", ErrInvalidArgs)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "Show object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "Show object size")
	cmd.Flags().BoolVarP(&checkExists, "exist", "e", false, "Exit with zero status if object exists")
	cmd.Flags().BoolVarP(&pretty, "pretty-print", "p", false, "Pretty-print object content")

	return cmd
}
