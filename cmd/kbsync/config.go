package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"kbsync/internal/config"
)

// ErrConfigExists is returned by config init when the target file is present.
var ErrConfigExists = errors.New("config file already exists")

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check a configuration file",
	}

	cmd.AddCommand(newConfigInitCmd(), newConfigCheckCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		subdomain string
		email     string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write a configuration file with default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, path)
			}

			cfg := config.Default()
			cfg.Source.Subdomain = subdomain
			cfg.Source.Email = email

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}

			if err := cfg.SaveConfig(path); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "📝 wrote %s\n", path)

			return err
		},
	}

	cmd.Flags().StringVar(&subdomain, "subdomain", "", "Help Center subdomain")
	cmd.Flags().StringVar(&email, "email", "", "Agent email used with the API token")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

func newConfigCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Load and validate a configuration file, token included",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}

			cfg, err := config.LoadConfig(path)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "✅ %s\n", cfg)

			return err
		},
	}
}
