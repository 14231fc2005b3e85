package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joacominatel/sqlgrader/internal/app"
	"github.com/joacominatel/sqlgrader/internal/config"
	"github.com/joacominatel/sqlgrader/internal/evaluation"
	"github.com/joacominatel/sqlgrader/internal/tui/theme"
)

type evalOptions struct {
	databaseID   int64
	student      string
	studentFile  string
	solution     string
	solutionFile string
	dsn          string
	sqlitePath   string
	jsonOutput   bool
}

func newEvalCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &evalOptions{}

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Grade one answer and print the verdict",
		Long: `Grade one answer against a reference solution.

The exit status is 0 when the answer is correct and 1 when it is not.`,
		Example: `  sqlgrader eval --db 1 --student "SELECT name FROM users" --solution-file q1.sql
  sqlgrader eval --sqlite shop.db --student-file answer.sql --solution-file q1.sql --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, rootFlags, opts)
		},
	}

	f := cmd.Flags()
	f.Int64Var(&opts.databaseID, "db", 0, "Database id from the config")
	f.StringVar(&opts.student, "student", "", "Student query")
	f.StringVar(&opts.studentFile, "student-file", "", "File holding the student query (- for stdin)")
	f.StringVar(&opts.solution, "solution", "", "Reference solution query")
	f.StringVar(&opts.solutionFile, "solution-file", "", "File holding the reference solution (- for stdin)")
	f.StringVar(&opts.dsn, "dsn", "", "Grade against this PostgreSQL DSN instead of a configured database")
	f.StringVar(&opts.sqlitePath, "sqlite", "", "Grade against this SQLite file instead of a configured database")
	f.BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	cmd.MarkFlagsMutuallyExclusive("student", "student-file")
	cmd.MarkFlagsMutuallyExclusive("solution", "solution-file")
	cmd.MarkFlagsOneRequired("solution", "solution-file")
	cmd.MarkFlagsMutuallyExclusive("dsn", "sqlite")

	return cmd
}

func runEval(cmd *cobra.Command, rootFlags *rootFlags, opts *evalOptions) error {
	env, err := rootFlags.load(cmd)
	if err != nil {
		return err
	}

	if opts.studentFile == "-" && opts.solutionFile == "-" {
		return &app.ErrConfig{Cause: errors.New("only one of --student-file and --solution-file can read stdin")}
	}

	student, err := readQuery(cmd.InOrStdin(), opts.student, opts.studentFile)
	if err != nil {
		return err
	}
	solution, err := readQuery(cmd.InOrStdin(), opts.solution, opts.solutionFile)
	if err != nil {
		return err
	}

	if err := opts.addAdHocTarget(env.cfg); err != nil {
		return err
	}
	if opts.databaseID == 0 && len(env.cfg.Databases) == 1 {
		opts.databaseID = env.cfg.Databases[0].ID
	}

	// Only the target database is opened.
	cfg := *env.cfg
	conn, ok := cfg.Connection(opts.databaseID)
	if !ok {
		return &app.ErrConfig{Cause: fmt.Errorf("database %d is not configured (use --db, --dsn or --sqlite)", opts.databaseID)}
	}
	cfg.Databases = []config.Connection{conn}

	svc, err := app.Open(cmd.Context(), &cfg, env.log)
	if err != nil {
		return err
	}
	defer svc.Close()

	res := svc.Evaluate(cmd.Context(), student, solution, opts.databaseID)

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		renderVerdict(cmd.OutOrStdout(), res)
	}

	if !res.IsCorrect {
		return errIncorrect
	}
	return nil
}

// addAdHocTarget registers the --dsn or --sqlite database under --db, or
// under id 1 when --db is not set.
func (o *evalOptions) addAdHocTarget(cfg *config.Config) error {
	var conn config.Connection
	switch {
	case o.dsn != "":
		c, err := config.ParseDSN(o.dsn)
		if err != nil {
			return &app.ErrConfig{Cause: err}
		}
		conn = c
	case o.sqlitePath != "":
		conn = config.Connection{Name: o.sqlitePath, Driver: "sqlite", Path: o.sqlitePath}
	default:
		return nil
	}

	if o.databaseID == 0 {
		o.databaseID = 1
	}
	conn.ID = o.databaseID

	// The ad-hoc target replaces any configured database with the same id.
	kept := cfg.Databases[:0:0]
	for _, c := range cfg.Databases {
		if c.ID != conn.ID {
			kept = append(kept, c)
		}
	}
	cfg.Databases = kept
	cfg.AddConnection(conn)
	return nil
}

func readQuery(stdin io.Reader, inline, path string) (string, error) {
	switch path {
	case "":
		return inline, nil
	case "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	default:
		b, err := os.ReadFile(path)
		if err != nil {
			return "", &app.ErrConfig{Cause: fmt.Errorf("read query file: %w", err)}
		}
		return string(b), nil
	}
}

func renderVerdict(w io.Writer, res evaluation.EvaluationResult) {
	fmt.Fprintln(w, theme.VerdictStyle(string(res.Category)).Render(string(res.Category)))
	fmt.Fprintln(w, res.Feedback)

	if res.ExecutionTimeMs > 0 {
		fmt.Fprintf(w, "%s\n", theme.StyleMuted.Render(fmt.Sprintf("executed in %d ms", res.ExecutionTimeMs)))
	}
	if d := res.TechnicalDetails; d != nil && len(d.Differences) > 0 {
		var lines []string
		for _, diff := range d.Differences {
			lines = append(lines, fmt.Sprintf("  %s: %s", diff.Type, diff.Description))
		}
		fmt.Fprintln(w, theme.StyleMuted.Render(strings.Join(lines, "\n")))
	}
}
