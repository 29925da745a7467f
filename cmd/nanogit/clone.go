package main

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/nanogit/internal/metrics"
	"github.com/fenilsonani/nanogit/pkg/vcs"
)

func newCloneCommand() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "clone <repository> [directory]",
		Short: "Clone refs/heads/master of a remote repository over git's smart-HTTP protocol",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if metricsAddr != "" {
				srv := &http.Server{Addr: metricsAddr, Handler: metrics.Handler()}
				go srv.ListenAndServe()
			}

			remote := args[0]
			dest := args[1:]
			dir := defaultCloneDir(remote)
			if len(dest) == 1 {
				dir = dest[0]
			}

			repo, err := vcs.Clone(context.Background(), remote, dir)
			if err != nil {
				return fmt.Errorf("clone failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cloned into %s\n", repo.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address for the duration of the clone")

	return cmd
}

// defaultCloneDir derives the destination directory the way git itself
// does: the last path segment with a trailing ".git" stripped.
func defaultCloneDir(remote string) string {
	trimmed := strings.TrimSuffix(remote, "/")
	base := path.Base(trimmed)
	base = strings.TrimSuffix(base, ".git")
	if idx := strings.LastIndex(base, ":"); idx != -1 {
		base = base[idx+1:]
	}
	if base == "" || base == "." {
		return "repository"
	}
	return base
}
