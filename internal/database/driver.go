package database

import "context"

// Driver defines the interface for a grading target database.
// All implementations must be safe for concurrent use.
type Driver interface {
	// Connect establishes a connection to the database.
	Connect(ctx context.Context, dsn string) error

	// Close closes the database connection.
	Close() error

	// Ping checks if the connection is alive.
	Ping(ctx context.Context) error

	// ListSchemas returns all user schemas for the current database.
	ListSchemas(ctx context.Context) ([]string, error)

	// ListTables returns all table names in a schema.
	ListTables(ctx context.Context, schema string) ([]string, error)

	// GetColumns returns all columns for a table.
	GetColumns(ctx context.Context, schema, table string) ([]Column, error)

	// RunQuery executes a read query and returns its fields and rows.
	// When limit > 0 no more than limit rows are read. Cancelling ctx
	// must abort the statement.
	RunQuery(ctx context.Context, query string, limit int) (*RawResult, error)

	// DatabaseName returns the name of the connected database.
	DatabaseName() string
}
