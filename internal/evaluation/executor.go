package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joacominatel/sqlgrader/internal/database"
	"github.com/joacominatel/sqlgrader/internal/logger"
)

// Runner is the database-access capability the executor depends on.
// database.Registry satisfies it.
type Runner interface {
	RunQuery(ctx context.Context, databaseID int64, query string, limit int) (*database.RawResult, error)
}

// Executor validates, sanitizes and runs a single query under a deadline
// and a row cap.
type Executor struct {
	runner    Runner
	validator *Validator
	limits    Limits
	log       *logger.Logger
}

// NewExecutor creates an Executor. log may be nil.
func NewExecutor(runner Runner, limits Limits, log *logger.Logger) *Executor {
	limits = limits.withDefaults()
	return &Executor{
		runner:    runner,
		validator: NewValidator(limits),
		limits:    limits,
		log:       log,
	}
}

type runOutcome struct {
	raw *database.RawResult
	err error
}

// Execute runs query against databaseID. label names the caller's side
// ("student", "solution") in logs. Failures are *QueryError values.
func (e *Executor) Execute(ctx context.Context, query string, databaseID int64, label string) (*QueryResult, error) {
	if err := e.validator.Validate(query); err != nil {
		return nil, err
	}

	sanitized := SanitizeQuery(query)
	log := e.log.WithFields(map[string]any{"database_id": databaseID, "context": label})
	if sanitized == "" {
		return nil, newQueryError(KindEmptyQuery, "Query is empty.", nil)
	}
	log.With("query", sanitized).Debug("executing query")

	runCtx, cancel := context.WithTimeout(ctx, e.limits.Timeout)
	defer cancel()

	// Buffered so an abandoned run can still deliver and exit.
	done := make(chan runOutcome, 1)
	start := time.Now()
	go func() {
		raw, err := e.runner.RunQuery(runCtx, databaseID, sanitized, e.limits.MaxRows+1)
		done <- runOutcome{raw: raw, err: err}
	}()

	var out runOutcome
	select {
	case out = <-done:
	case <-runCtx.Done():
		out.err = runCtx.Err()
	}
	elapsed := time.Since(start)

	if out.err != nil {
		return nil, e.classify(ctx, runCtx, out.err, log)
	}

	if err := e.checkShape(out.raw); err != nil {
		log.With("kind", string(err.Kind)).Warn(err.Message)
		return nil, err
	}

	result := wrap(out.raw, elapsed)
	log.WithFields(map[string]any{
		"rows":        result.RowCount,
		"duration_ms": result.ExecutionTimeMs,
	}).Debug("query executed")
	return result, nil
}

func (e *Executor) classify(parent, runCtx context.Context, err error, log *logger.Logger) *QueryError {
	clean := sanitizeError(err)

	if parent.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		log.With("timeout", e.limits.Timeout.String()).Warn("query timed out")
		return newQueryError(KindTimeout,
			fmt.Sprintf("Query execution exceeded the time limit of %s.", e.limits.Timeout), clean)
	}

	log.Error(clean, "query execution failed")
	return newQueryError(KindExecutionFailed, "Query execution failed.", clean)
}

func (e *Executor) checkShape(raw *database.RawResult) *QueryError {
	switch {
	case raw == nil || raw.Fields == nil || raw.Rows == nil:
		return newQueryError(KindInvalidResult, "Query returned an invalid result.", nil)
	case len(raw.Fields) == 0:
		return newQueryError(KindNoColumns, "Query returned no columns.", nil)
	case len(raw.Rows) > e.limits.MaxRows:
		return newQueryError(KindTooManyRows,
			fmt.Sprintf("Query returned more than %d rows.", e.limits.MaxRows), nil)
	}
	return nil
}

func wrap(raw *database.RawResult, elapsed time.Duration) *QueryResult {
	columns := make([]string, len(raw.Fields))
	for i, f := range raw.Fields {
		columns[i] = f.Name
	}

	rows := make([]Row, len(raw.Rows))
	for i, values := range raw.Rows {
		row := make(Row, len(columns))
		for j, name := range columns {
			if j < len(values) {
				row[name] = values[j]
			} else {
				row[name] = nil
			}
		}
		rows[i] = row
	}

	return &QueryResult{
		Columns:         columns,
		Rows:            rows,
		RowCount:        len(rows),
		ExecutionTimeMs: elapsed.Round(time.Millisecond).Milliseconds(),
	}
}
