// Package sqlite implements database.Driver over modernc.org/sqlite, used for
// self-contained exercise databases shipped as files.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joacominatel/sqlgrader/internal/database"
	_ "modernc.org/sqlite" // driver: sqlite
)

// Driver implements the database.Driver interface for SQLite files.
type Driver struct {
	db       *sql.DB
	dbName   string
	maxConns int
}

// New creates a new SQLite driver. maxConns <= 0 keeps the default of 5.
func New(maxConns int) *Driver {
	if maxConns <= 0 {
		maxConns = 5
	}
	return &Driver{maxConns: maxConns}
}

// DSN builds a read-only connection string for the database file at path.
func DSN(path string) string {
	return "file:" + path + "?mode=ro&_pragma=query_only(1)&_pragma=busy_timeout(5000)"
}

// Connect opens the database and verifies it answers.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	db.SetMaxOpenConns(d.maxConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping: %w", err)
	}

	d.db = db
	d.dbName = nameFromDSN(dsn)
	return nil
}

// Close closes the database handle.
func (d *Driver) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Ping checks if the database is reachable.
func (d *Driver) Ping(ctx context.Context) error {
	if d.db == nil {
		return fmt.Errorf("not connected")
	}
	return d.db.PingContext(ctx)
}

// ListSchemas returns the single attached schema.
func (d *Driver) ListSchemas(context.Context) ([]string, error) {
	return []string{"main"}, nil
}

// ListTables returns user table names.
func (d *Driver) ListTables(ctx context.Context, _ string) ([]string, error) {
	if d.db == nil {
		return nil, fmt.Errorf("not connected")
	}
	rows, err := d.db.QueryContext(ctx, queryListTables)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// GetColumns returns column metadata for a table.
func (d *Driver) GetColumns(ctx context.Context, _, table string) ([]database.Column, error) {
	if d.db == nil {
		return nil, fmt.Errorf("not connected")
	}
	rows, err := d.db.QueryContext(ctx, queryGetColumns, table)
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}
	defer rows.Close()

	var columns []database.Column
	for rows.Next() {
		var col database.Column
		var notNull, pk int
		if err := rows.Scan(&col.Name, &col.DataType, &notNull, &col.Default, &col.OrdinalPos, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		col.IsNullable = notNull == 0
		col.IsPrimary = pk > 0
		col.OrdinalPos++
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// RunQuery runs a SQL query and returns its fields and scalar rows.
func (d *Driver) RunQuery(ctx context.Context, query string, limit int) (*database.RawResult, error) {
	if d.db == nil {
		return nil, fmt.Errorf("not connected")
	}

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}
	fields := make([]database.Field, len(types))
	for i, ct := range types {
		fields[i] = database.Field{Name: ct.Name(), DataType: strings.ToLower(ct.DatabaseTypeName())}
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		if limit > 0 && len(resultRows) >= limit {
			break
		}
		values := make([]any, len(fields))
		ptrs := make([]any, len(fields))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		for i, v := range values {
			values[i] = database.Scalar(v)
		}
		resultRows = append(resultRows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return &database.RawResult{Fields: fields, Rows: resultRows}, nil
}

// DatabaseName returns the database file name without extension.
func (d *Driver) DatabaseName() string {
	return d.dbName
}

func nameFromDSN(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
