package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kbsync/internal/validator"
	"kbsync/pkg/metadata"
)

// ErrSignatureRequired is returned by validate --require-signature on unsigned documents.
var ErrSignatureRequired = errors.New("document has no snapshot block")

func newValidateCmd() *cobra.Command {
	var requireSignature bool

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a consolidated document",
		Long: `Check that every table-of-contents link resolves to a heading, that the
declared article total matches the document, and, when a snapshot block is
present, that the document was not edited since it was written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], requireSignature)
		},
	}

	cmd.Flags().BoolVar(&requireSignature, "require-signature", false, "Fail when the document has no snapshot block")

	return cmd
}

func runValidate(cmd *cobra.Command, path string, requireSignature bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	out := cmd.OutOrStdout()

	meta, clean := metadata.Extract(string(content))

	result := validator.New().Validate(clean)

	_, _ = fmt.Fprintf(out, "📂 %s\n", path)
	_, _ = fmt.Fprintf(out, "Headings: %d, anchor links: %d, articles: %d/%d\n",
		result.Stats.Headings, result.Stats.AnchorLinks, result.Stats.CountedArticles, result.Stats.DeclaredArticles)

	for _, w := range result.Warnings {
		_, _ = fmt.Fprintf(out, "⚠️  %s\n", w)
	}

	for _, e := range result.Errors {
		_, _ = fmt.Fprintf(out, "❌ %s\n", e.Error())
	}

	var errs []error
	if !result.IsValid {
		errs = append(errs, result.Err())
	}

	switch {
	case meta != nil:
		if _, verifyErr := metadata.Verify(string(content)); verifyErr != nil {
			_, _ = fmt.Fprintf(out, "❌ snapshot: %v\n", verifyErr)
			errs = append(errs, verifyErr)
		} else {
			_, _ = fmt.Fprintf(out, "🔒 snapshot intact (synced %s)\n", meta.SyncedAt.Format("2006-01-02 15:04"))
		}
	case requireSignature:
		_, _ = fmt.Fprintf(out, "❌ %v\n", ErrSignatureRequired)
		errs = append(errs, ErrSignatureRequired)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	_, _ = fmt.Fprintln(out, "✅ document is valid")

	return nil
}
