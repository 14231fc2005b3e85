package main

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/joacominatel/sqlgrader/internal/app"
	"github.com/joacominatel/sqlgrader/internal/logger"
	"github.com/joacominatel/sqlgrader/internal/tui"
)

type consoleOptions struct {
	databaseID   int64
	solutionFile string
}

func newConsoleCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &consoleOptions{}

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Practise an exercise in the interactive grading console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, rootFlags, opts)
		},
	}

	cmd.Flags().Int64Var(&opts.databaseID, "db", 0, "Database id (prompted when omitted)")
	cmd.Flags().StringVar(&opts.solutionFile, "solution-file", "", "File holding the reference solution")
	_ = cmd.MarkFlagRequired("solution-file")

	return cmd
}

func runConsole(cmd *cobra.Command, rootFlags *rootFlags, opts *consoleOptions) error {
	env, err := rootFlags.load(cmd)
	if err != nil {
		return err
	}

	solution, err := readQuery(cmd.InOrStdin(), "", opts.solutionFile)
	if err != nil {
		return err
	}
	if strings.TrimSpace(solution) == "" {
		return &app.ErrConfig{Cause: fmt.Errorf("%s is empty", opts.solutionFile)}
	}

	// Logs would draw over the alternate screen.
	svc, err := app.Open(cmd.Context(), env.cfg, logger.Nop())
	if err != nil {
		return err
	}
	defer svc.Close()

	if opts.databaseID != 0 {
		if err := requireDatabase(svc, opts.databaseID); err != nil {
			return err
		}
	}

	model := tui.NewModel(svc, tui.Exercise{
		Title:      strings.TrimSuffix(filepath.Base(opts.solutionFile), filepath.Ext(opts.solutionFile)),
		Solution:   solution,
		DatabaseID: opts.databaseID,
	})
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
