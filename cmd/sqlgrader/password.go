package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joacominatel/sqlgrader/internal/app"
	"github.com/joacominatel/sqlgrader/internal/config"
)

func newPasswordCmd(rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Manage database passwords in the OS keyring",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set NAME",
		Short: "Store the password for a configured database (read from stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootFlags.load(cmd)
			if err != nil {
				return err
			}
			name := args[0]
			if !hasConnectionNamed(env.cfg, name) {
				return &app.ErrConfig{Cause: fmt.Errorf("no database named %q in the config", name)}
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Password for %s: ", name)
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				return fmt.Errorf("empty password")
			}

			if err := config.StorePassword(name, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored password for %s\n", name)
			return nil
		},
	})

	return cmd
}

func hasConnectionNamed(cfg *config.Config, name string) bool {
	for _, c := range cfg.Databases {
		if c.Name == name {
			return true
		}
	}
	return false
}
