package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"estcheck/internal/cache"
)

// cacheApp is the directory name of the disk cache under the user cache root.
const cacheApp = "estcheck"

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove results stored by --disk-cache",
		Args:  cobra.NoArgs,
		RunE:  runClean,
	}
}

func runClean(cmd *cobra.Command, _ []string) error {
	disk, err := cache.Open(cacheApp)
	if err != nil {
		return fmt.Errorf("failed to open disk cache: %w", err)
	}
	if err := disk.DropAll(); err != nil {
		return fmt.Errorf("failed to clean %q: %w", disk.Dir(), err)
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cleaned %s\n", disk.Dir())
	}
	return nil
}
