package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/joacominatel/sqlgrader/internal/database/sqlite/sqlitetest"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T) *Driver {
	t.Helper()
	path := sqlitetest.Seed(t, sqlitetest.Shop...)
	d := New(2)
	require.NoError(t, d.Connect(context.Background(), DSN(path)))
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestRunQueryReturnsFieldsAndScalars(t *testing.T) {
	d := connect(t)

	res, err := d.RunQuery(context.Background(), "SELECT id, name, city FROM customers ORDER BY id", 0)
	require.NoError(t, err)
	require.Equal(t, []string{"id", "name", "city"}, []string{res.Fields[0].Name, res.Fields[1].Name, res.Fields[2].Name})
	require.Len(t, res.Rows, 3)
	require.Equal(t, []any{int64(1), "Ada", "London"}, res.Rows[0])
	require.Nil(t, res.Rows[2][2])
}

func TestRunQueryHonorsLimit(t *testing.T) {
	d := connect(t)

	res, err := d.RunQuery(context.Background(), "SELECT id FROM customers", 2)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
}

func TestRunQueryEmptyResultKeepsFields(t *testing.T) {
	d := connect(t)

	res, err := d.RunQuery(context.Background(), "SELECT id, total FROM orders WHERE total > 1000", 0)
	require.NoError(t, err)
	require.Len(t, res.Fields, 2)
	require.NotNil(t, res.Rows)
	require.Empty(t, res.Rows)
}

func TestRunQueryParsesDatetime(t *testing.T) {
	d := connect(t)

	res, err := d.RunQuery(context.Background(), "SELECT placed_at FROM orders WHERE id = 1", 0)
	require.NoError(t, err)
	ts, ok := res.Rows[0][0].(time.Time)
	require.True(t, ok, "got %T", res.Rows[0][0])
	require.Equal(t, 2024, ts.Year())
}

func TestConnectionIsReadOnly(t *testing.T) {
	d := connect(t)

	_, err := d.RunQuery(context.Background(), "INSERT INTO customers (id, name) VALUES (9, 'Eve')", 0)
	require.Error(t, err)
}

func TestIntrospection(t *testing.T) {
	d := connect(t)
	ctx := context.Background()

	require.Equal(t, "exercise", d.DatabaseName())

	schemas, err := d.ListSchemas(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"main"}, schemas)

	tables, err := d.ListTables(ctx, "main")
	require.NoError(t, err)
	require.Equal(t, []string{"customers", "orders"}, tables)

	cols, err := d.GetColumns(ctx, "main", "customers")
	require.NoError(t, err)
	require.Len(t, cols, 3)
	require.Equal(t, "id", cols[0].Name)
	require.True(t, cols[0].IsPrimary)
	require.Equal(t, 1, cols[0].OrdinalPos)
	require.False(t, cols[1].IsNullable)
}

func TestNotConnected(t *testing.T) {
	t.Parallel()

	d := New(0)
	_, err := d.RunQuery(context.Background(), "SELECT 1", 0)
	require.Error(t, err)
	require.Error(t, d.Ping(context.Background()))
}
