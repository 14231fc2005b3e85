package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joacominatel/sqlgrader/internal/app"
	"github.com/joacominatel/sqlgrader/internal/config"
	"github.com/joacominatel/sqlgrader/internal/logger"
)

type rootFlags struct {
	configPath string
	logLevel   string
	human      bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "sqlgrader",
		Short:         "Grade SQL answers against reference solutions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default ./config.yaml or ~/.sqlgrader/config.yaml)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&flags.human, "human", false, "Human-readable console logs")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newEvalCmd(flags))
	cmd.AddCommand(newConsoleCmd(flags))
	cmd.AddCommand(newPasswordCmd(flags))
	cmd.AddCommand(newConfigCmd(flags))

	return cmd
}

// environment is what every command builds from the root flags.
type environment struct {
	cfg *config.Config
	log *logger.Logger
}

func (f *rootFlags) load(cmd *cobra.Command) (*environment, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, &app.ErrConfig{Cause: err}
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.human {
		cfg.Log.HumanReadable = true
	}

	log, err := logger.New(logger.Options{
		Level:         cfg.Log.Level,
		HumanReadable: cfg.Log.HumanReadable,
		Writer:        cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, &app.ErrConfig{Cause: err}
	}
	return &environment{cfg: cfg, log: log}, nil
}

// errIncorrect signals a graded answer that was not correct. It maps to
// exit code 1 without an error message.
var errIncorrect = errors.New("answer is not correct")

// exitCode maps an error to the process exit status: 1 for an incorrect
// answer, 2 for configuration problems and 3 for anything else.
func exitCode(err error) int {
	var cfgErr *app.ErrConfig
	switch {
	case errors.Is(err, errIncorrect):
		return 1
	case errors.As(err, &cfgErr):
		return 2
	default:
		return 3
	}
}

func requireDatabase(svc *app.Service, id int64) error {
	if !svc.HasDatabase(id) {
		return &app.ErrConfig{Cause: fmt.Errorf("database %d is not configured", id)}
	}
	return nil
}
