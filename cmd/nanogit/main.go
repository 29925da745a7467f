package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fenilsonani/nanogit/internal/nanolog"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "nanogit",
		Short: "A minimal content-addressed git implementation",
		Long: `nanogit is a minimal implementation of git's object model and smart-HTTP
clone protocol: loose object storage, pack-file decoding with ref-delta
resolution, and a working-tree checkout.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				nanolog.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newInitCommand(),
		newHashObjectCommand(),
		newCatFileCommand(),
		newLsTreeCommand(),
		newWriteTreeCommand(),
		newCommitTreeCommand(),
		newCloneCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", errorKind(err), err)
		os.Exit(1)
	}
}
