// Package main provides the kbsync command: Help Center to consolidated markdown.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kbsync",
		Short: "Consolidate a Help Center into one markdown document",
		Long: `kbsync fetches every category, section and article from a Zendesk Help Center
and writes them as a single markdown document with a table of contents.

Available subcommands:
  sync     - Fetch the Help Center and write the consolidated document
  convert  - Convert an HTML fragment to markdown
  validate - Check a consolidated document's anchors, totals and snapshot hash
  config   - Create or check a configuration file`,
		SilenceUsage: true,
	}

	root.AddCommand(newSyncCmd(), newConvertCmd(), newValidateCmd(), newConfigCmd())

	return root
}
