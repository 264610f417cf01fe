package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kbsync/internal/config"
	"kbsync/internal/formatter"
	"kbsync/internal/helpcenter"
	"kbsync/internal/logger"
	"kbsync/internal/pipeline"
	"kbsync/internal/renderer"
	"kbsync/internal/sink"
)

// defaultConfigPath is tried when --config is not given.
const defaultConfigPath = "configs/kbsync.yaml"

type syncOptions struct {
	configPath string
	subdomain  string
	baseURL    string
	email      string
	output     string
	logLevel   string
	logFormat  string
	dryRun     bool
	sign       bool
	backup     bool
	noValidate bool
}

func newSyncCmd() *cobra.Command {
	opts := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the Help Center and write the consolidated document",
		Long: `Fetch all categories, sections and articles, arrange them as
Category > Section > Article and write one markdown document.

The API token is read from the environment variable named by source.token_env
(ZENDESK_TOKEN by default).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, opts)
		},
	}

	addSyncFlags(cmd.Flags(), opts)

	return cmd
}

func addSyncFlags(fs *pflag.FlagSet, o *syncOptions) {
	fs.StringVarP(&o.configPath, "config", "c", "", "Path to YAML configuration file (default "+defaultConfigPath+" if present)")
	fs.StringVar(&o.subdomain, "subdomain", os.Getenv("ZENDESK_SUBDOMAIN"), "Help Center subdomain")
	fs.StringVar(&o.baseURL, "base-url", "", "Help Center API base URL (overrides --subdomain)")
	fs.StringVar(&o.email, "email", os.Getenv("ZENDESK_EMAIL"), "Agent email used with the API token")
	fs.StringVarP(&o.output, "output", "o", "", "Output file path")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&o.logFormat, "log-format", "", "Log format: text or json")
	fs.BoolVar(&o.dryRun, "dry-run", false, "Print the document to stdout instead of writing it")
	fs.BoolVar(&o.sign, "sign", false, "Append a snapshot block with a content hash")
	fs.BoolVar(&o.backup, "backup", false, "Keep the previous document as <output>.bak")
	fs.BoolVar(&o.noValidate, "no-validate", false, "Skip validation of the rendered document")
}

// loadSyncConfig reads the config file (if any), applies flag overrides, resolves
// the token and validates.
func loadSyncConfig(fs *pflag.FlagSet, o *syncOptions) (*config.Config, error) {
	cfg := config.Default()

	path := o.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}

	if path != "" {
		loaded, err := config.ReadFile(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if o.subdomain != "" {
		cfg.Source.Subdomain = o.subdomain
	}

	if o.baseURL != "" {
		cfg.Source.BaseURL = o.baseURL
	}

	if o.email != "" {
		cfg.Source.Email = o.email
	}

	if o.output != "" {
		cfg.Output.Path = o.output
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}

	if fs.Changed("sign") {
		cfg.Output.Sign = o.sign
	}

	if fs.Changed("backup") {
		cfg.Output.CreateBackup = o.backup
	}

	if o.noValidate {
		cfg.Features.ValidateOutput = false
	}

	cfg.ResolveToken(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func runSync(cmd *cobra.Command, o *syncOptions) error {
	cfg, err := loadSyncConfig(cmd.Flags(), o)
	if err != nil {
		return err
	}

	log, runID := logger.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr()).WithRun()
	log.Info("🚀 starting sync", "config", cfg.String())

	client := helpcenter.NewClient(cfg.Source, cfg.Advanced.BufferSizeKb, log)
	defer client.Close()

	var dst pipeline.Sink

	report := cmd.OutOrStdout()

	if o.dryRun {
		dst = &sink.WriterSink{W: cmd.OutOrStdout()}
		report = cmd.ErrOrStderr()
	} else {
		dst = sink.NewFileSink(cfg.Output.Path, cfg.Output.CreateBackup, cfg.Output.Sign, log)
	}

	p := pipeline.New(client, dst, pipeline.Options{
		SourceLabel: cfg.SourceLabel(),
		Document: renderer.Options{
			Title:       cfg.Document.Title,
			RefreshNote: cfg.Document.RefreshNote,
			TimeLayout:  cfg.Document.TimeLayout,
		},
		Validate:                   cfg.Features.ValidateOutput,
		ContinueOnValidationErrors: cfg.Advanced.ContinueOnValidationErrors,
	}, log)

	result, err := p.Run(cmd.Context())
	if err != nil {
		log.Error("❌ sync failed", "error", err)

		if errors.Is(err, helpcenter.ErrUnauthorized) {
			log.Error("check source.email and the API token", "token_env", cfg.Source.TokenEnv)
		}

		return err
	}

	log.Info("✨ sync complete", "articles", result.TotalArticles, "duration", result.Duration)
	printSummary(report, result, runID, cfg.Output.Path, o.dryRun)

	return nil
}

func printSummary(w io.Writer, result *pipeline.Result, runID, path string, dryRun bool) {
	rows := make([][]string, 0, len(result.Categories))

	for _, c := range result.Categories {
		name := c.Name
		if c.Synthetic {
			name += " (synthesized)"
		}

		rows = append(rows, []string{name, strconv.Itoa(c.Sections), strconv.Itoa(c.Articles)})
	}

	_, _ = fmt.Fprintln(w, "\n------------------------------------------------")
	_, _ = fmt.Fprintln(w, "📊 Summary Report")
	_, _ = fmt.Fprintln(w, "------------------------------------------------")
	_, _ = fmt.Fprintln(w, formatter.FormatTable([]string{"Category", "Sections", "Articles"}, rows))
	_, _ = fmt.Fprintf(w, "\nRun ID: %s\n", runID)
	_, _ = fmt.Fprintf(w, "Total Articles: %d\n", result.TotalArticles)

	if result.Stats.OrphanArticles > 0 {
		_, _ = fmt.Fprintf(w, "⚠️  Orphan Articles: %d (filed under Other)\n", result.Stats.OrphanArticles)
	}

	if !dryRun {
		_, _ = fmt.Fprintf(w, "Output: %s (%d bytes)\n", path, result.Bytes)
	}

	_, _ = fmt.Fprintf(w, "Total Duration: %v\n", result.Duration)
	_, _ = fmt.Fprintln(w, "------------------------------------------------")
}
