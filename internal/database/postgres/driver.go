package postgres

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joacominatel/sqlgrader/internal/database"
)

// Driver implements the database.Driver interface for PostgreSQL.
type Driver struct {
	pool     *pgxpool.Pool
	dbName   string
	maxConns int32
}

// New creates a new PostgreSQL driver. maxConns <= 0 keeps the default of 5.
func New(maxConns int32) *Driver {
	if maxConns <= 0 {
		maxConns = 5
	}
	return &Driver{maxConns: maxConns}
}

// Connect establishes a connection pool to PostgreSQL. Every session is
// opened read-only.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = d.maxConns
	cfg.MinConns = 1
	cfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"
	cfg.ConnConfig.RuntimeParams["application_name"] = "sqlgrader"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping: %w", err)
	}

	d.pool = pool
	d.dbName = cfg.ConnConfig.Database
	return nil
}

// Close closes the connection pool.
func (d *Driver) Close() error {
	if d.pool != nil {
		d.pool.Close()
	}
	return nil
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if d.pool == nil {
		return fmt.Errorf("not connected")
	}
	return d.pool.Ping(ctx)
}

// ListSchemas returns all user-created schemas.
func (d *Driver) ListSchemas(ctx context.Context) ([]string, error) {
	return d.listNames(ctx, queryListSchemas)
}

// ListTables returns all table names in a schema.
func (d *Driver) ListTables(ctx context.Context, schema string) ([]string, error) {
	return d.listNames(ctx, queryListTables, schema)
}

func (d *Driver) listNames(ctx context.Context, query string, args ...any) ([]string, error) {
	if d.pool == nil {
		return nil, fmt.Errorf("not connected")
	}
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetColumns returns column metadata for a table.
func (d *Driver) GetColumns(ctx context.Context, schema, table string) ([]database.Column, error) {
	if d.pool == nil {
		return nil, fmt.Errorf("not connected")
	}
	rows, err := d.pool.Query(ctx, queryGetColumns, schema, table)
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}
	defer rows.Close()

	var columns []database.Column
	for rows.Next() {
		var col database.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &col.Default, &col.OrdinalPos, &col.IsPrimary); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		col.IsNullable = nullable == "YES"
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// RunQuery runs a SQL query and returns its fields and scalar rows.
// pgx cancels the statement server-side when ctx is done.
func (d *Driver) RunQuery(ctx context.Context, query string, limit int) (*database.RawResult, error) {
	if d.pool == nil {
		return nil, fmt.Errorf("not connected")
	}

	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	defer rows.Close()

	descs := rows.FieldDescriptions()
	typeMap := rows.Conn().TypeMap()
	fields := make([]database.Field, len(descs))
	for i, f := range descs {
		fields[i] = database.Field{Name: f.Name}
		if t, ok := typeMap.TypeForOID(f.DataTypeOID); ok {
			fields[i].DataType = t.Name
		}
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		if limit > 0 && len(resultRows) >= limit {
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = scalar(v)
		}
		resultRows = append(resultRows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return &database.RawResult{Fields: fields, Rows: resultRows}, nil
}

// DatabaseName returns the name of the connected database.
func (d *Driver) DatabaseName() string {
	return d.dbName
}

// scalar flattens pgtype values that Values() leaves as structs.
func scalar(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		f, err := x.Float64Value()
		if err == nil && f.Valid {
			return f.Float64
		}
	case driver.Valuer:
		dv, err := x.Value()
		if err == nil {
			return database.Scalar(dv)
		}
	}
	return database.Scalar(v)
}
