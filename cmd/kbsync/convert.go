package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"kbsync/internal/converter"
)

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert an HTML fragment to markdown",
		Long: `Convert an article body from HTML to markdown using the same rules as sync.
Reads the file argument, or stdin when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConvert,
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	var (
		input []byte
		err   error
	)

	if len(args) == 1 {
		input, err = os.ReadFile(args[0])
	} else {
		input, err = io.ReadAll(cmd.InOrStdin())
	}

	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), converter.ToMarkdown(string(input)))

	return err
}
