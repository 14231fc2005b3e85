// Package sqlitetest builds throwaway SQLite exercise databases for tests.
package sqlitetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// Shop is a small fixture schema used across packages.
var Shop = []string{
	`CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT NOT NULL, city TEXT)`,
	`CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER NOT NULL REFERENCES customers(id), total REAL NOT NULL, placed_at DATETIME)`,
	`INSERT INTO customers (id, name, city) VALUES (1, 'Ada', 'London'), (2, 'Grace', 'Arlington'), (3, 'Linus', NULL)`,
	`INSERT INTO orders (id, customer_id, total, placed_at) VALUES
		(1, 1, 10.5, '2024-01-02 10:00:00'),
		(2, 1, 20.25, '2024-01-03 11:30:00'),
		(3, 2, 7.0, '2024-02-01 09:15:00')`,
}

// Seed creates a database file under t.TempDir, runs stmts against it and
// returns its path.
func Seed(t testing.TB, stmts ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "exercise.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}
