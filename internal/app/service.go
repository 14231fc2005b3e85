package app

import (
	"context"
	"fmt"

	"github.com/joacominatel/sqlgrader/internal/config"
	"github.com/joacominatel/sqlgrader/internal/database"
	"github.com/joacominatel/sqlgrader/internal/database/postgres"
	"github.com/joacominatel/sqlgrader/internal/database/sqlite"
	"github.com/joacominatel/sqlgrader/internal/evaluation"
	"github.com/joacominatel/sqlgrader/internal/logger"
)

// SchemaTree represents the loaded schema hierarchy for the explorer.
type SchemaTree struct {
	Database string
	Schemas  []SchemaNode
}

// SchemaNode holds a schema name and its tables.
type SchemaNode struct {
	Name   string
	Tables []string
}

// Service coordinates grading between the front ends (HTTP, CLI, TUI) and
// the registered databases.
type Service struct {
	registry  *database.Registry
	executor  *evaluation.Executor
	evaluator *evaluation.Evaluator
	log       *logger.Logger
}

// Limits converts the evaluation config section into grading limits.
func Limits(c config.Evaluation) evaluation.Limits {
	return evaluation.Limits{
		Timeout:        c.Timeout,
		MaxRows:        c.MaxRows,
		MaxQueryLength: c.MaxQueryLength,
		MaxParentheses: c.MaxParentheses,
	}
}

// NewService creates a service over an already populated registry.
func NewService(registry *database.Registry, ev config.Evaluation, log *logger.Logger) *Service {
	executor := evaluation.NewExecutor(registry, Limits(ev), log)
	return &Service{
		registry: registry,
		executor: executor,
		evaluator: evaluation.NewEvaluator(executor,
			evaluation.WithLocale(ev.Locale),
			evaluation.WithLogger(log),
		),
		log: log,
	}
}

// Open connects every database in cfg and returns a ready service.
// Already opened drivers are closed if any connection fails.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Service, error) {
	registry := database.NewRegistry()
	for _, conn := range cfg.Databases {
		if err := Connect(ctx, registry, conn); err != nil {
			_ = registry.Close()
			return nil, err
		}
		log.WithFields(map[string]any{
			"database_id": conn.ID,
			"name":        conn.Name,
			"driver":      conn.Driver,
		}).Info("database connected")
	}
	return NewService(registry, cfg.Evaluation, log), nil
}

// Connect opens conn and registers it.
func Connect(ctx context.Context, registry *database.Registry, conn config.Connection) error {
	driver, dsn, err := newDriver(conn)
	if err != nil {
		return err
	}
	if err := driver.Connect(ctx, dsn); err != nil {
		return &ErrConnection{Name: conn.Name, Cause: err}
	}
	target := database.Target{ID: conn.ID, Name: conn.Name, Driver: conn.Driver}
	if err := registry.Register(target, driver); err != nil {
		_ = driver.Close()
		return &ErrConfig{Cause: err}
	}
	return nil
}

func newDriver(conn config.Connection) (database.Driver, string, error) {
	switch conn.Driver {
	case "postgres":
		password, err := conn.ResolvePassword()
		if err != nil {
			return nil, "", &ErrConfig{Cause: fmt.Errorf("%s: %w", conn.Name, err)}
		}
		return postgres.New(int32(conn.MaxConns)), conn.DSN(password), nil
	case "sqlite":
		return sqlite.New(conn.MaxConns), sqlite.DSN(conn.Path), nil
	default:
		return nil, "", &ErrConfig{Cause: fmt.Errorf("%s: unsupported driver %q", conn.Name, conn.Driver)}
	}
}

// Close closes every registered database.
func (s *Service) Close() error {
	return s.registry.Close()
}

// Ping checks every registered database.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.registry.PingAll(ctx); err != nil {
		return &ErrConnection{Cause: err}
	}
	return nil
}

// Databases lists the registered grading databases.
func (s *Service) Databases() []database.Target {
	return s.registry.Targets()
}

// HasDatabase reports whether id is registered.
func (s *Service) HasDatabase(id int64) bool {
	_, err := s.registry.Driver(id)
	return err == nil
}

// Evaluate grades studentQuery against solutionQuery on databaseID.
func (s *Service) Evaluate(ctx context.Context, studentQuery, solutionQuery string, databaseID int64) evaluation.EvaluationResult {
	return s.evaluator.EvaluateQuery(ctx, studentQuery, solutionQuery, databaseID)
}

// EvaluateDetailed is Evaluate that also returns both executed results.
func (s *Service) EvaluateDetailed(ctx context.Context, studentQuery, solutionQuery string, databaseID int64) evaluation.Report {
	return s.evaluator.Evaluate(ctx, studentQuery, solutionQuery, databaseID)
}

// RunQuery executes a single query under the grading limits without
// comparing it to anything.
func (s *Service) RunQuery(ctx context.Context, query string, databaseID int64) (*evaluation.QueryResult, error) {
	result, err := s.executor.Execute(ctx, query, databaseID, "preview")
	if err != nil {
		return nil, &ErrQuery{Query: query, Cause: err}
	}
	return result, nil
}

// LoadSchemaTree fetches schemas and their tables for a database.
func (s *Service) LoadSchemaTree(ctx context.Context, databaseID int64) (*SchemaTree, error) {
	driver, err := s.registry.Driver(databaseID)
	if err != nil {
		return nil, err
	}

	schemas, err := driver.ListSchemas(ctx)
	if err != nil {
		return nil, err
	}

	tree := &SchemaTree{
		Database: driver.DatabaseName(),
	}

	for _, schema := range schemas {
		tables, err := driver.ListTables(ctx, schema)
		if err != nil {
			return nil, err
		}
		tree.Schemas = append(tree.Schemas, SchemaNode{
			Name:   schema,
			Tables: tables,
		})
	}

	return tree, nil
}

// LoadColumns fetches column metadata for a specific table.
func (s *Service) LoadColumns(ctx context.Context, databaseID int64, schema, table string) ([]database.Column, error) {
	driver, err := s.registry.Driver(databaseID)
	if err != nil {
		return nil, err
	}
	return driver.GetColumns(ctx, schema, table)
}
