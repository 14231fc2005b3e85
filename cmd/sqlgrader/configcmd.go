package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joacominatel/sqlgrader/internal/app"
	"github.com/joacominatel/sqlgrader/internal/config"
)

type configInitOptions struct {
	path   string
	force  bool
	sqlite string
}

func newConfigCmd(rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	opts := &configInitOptions{}
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, opts)
		},
	}
	initCmd.Flags().StringVar(&opts.path, "path", "config.yaml", "Where to write the file")
	initCmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing file")
	initCmd.Flags().StringVar(&opts.sqlite, "sqlite", "", "Register this SQLite file as database 1")

	cmd.AddCommand(initCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and list its databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootFlags.load(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "server: %s\n", env.cfg.Server.Addr)
			fmt.Fprintf(out, "evaluation: timeout=%s max_rows=%d locale=%s\n",
				env.cfg.Evaluation.Timeout, env.cfg.Evaluation.MaxRows, env.cfg.Evaluation.Locale)
			for _, c := range env.cfg.Databases {
				fmt.Fprintf(out, "  #%d %s [%s] %s\n", c.ID, c.Name, c.Driver, c.DisplayString())
			}
			return nil
		},
	})

	return cmd
}

func runConfigInit(cmd *cobra.Command, opts *configInitOptions) error {
	if _, err := os.Stat(opts.path); err == nil && !opts.force {
		return &app.ErrConfig{Cause: fmt.Errorf("%s already exists (use --force)", opts.path)}
	}

	// Defaults come from the loader; an empty path with no file yields them.
	cfg, err := config.Load("")
	if err != nil {
		return &app.ErrConfig{Cause: err}
	}
	cfg.Databases = nil
	if opts.sqlite != "" {
		cfg.AddConnection(config.Connection{ID: 1, Name: "exercises", Driver: "sqlite", Path: opts.sqlite})
	}
	if err := config.Validate(cfg); err != nil {
		return &app.ErrConfig{Cause: err}
	}

	if err := config.Save(cfg, opts.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.path)
	return nil
}
