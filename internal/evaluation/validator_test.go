package evaluation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err))
}

func TestValidatorForbiddenOperations(t *testing.T) {
	t.Parallel()

	v := NewValidator(DefaultLimits())
	queries := []string{
		"DELETE FROM users",
		"delete from users",
		"SELECT * FROM users; DROP TABLE users",
		"SELECT 1;drop table x",
		"UPDATE users SET name = 'x'",
		"INSERT INTO t VALUES (1)",
		"ALTER TABLE t ADD c int",
		"CREATE TABLE t (id int)",
		"TRUNCATE t",
		"REPLACE INTO t VALUES (1)",
		"SELECT LOAD_FILE('/etc/passwd')",
		"SELECT * FROM t INTO OUTFILE '/tmp/x'",
		"SELECT * FROM t INTO   DUMPFILE '/tmp/x'",
		"SELECT BENCHMARK(1000000, MD5('a'))",
		"SELECT SLEEP(5)",
		"SELECT pg_sleep(5)",
		"SELECT 1; WAITFOR DELAY '0:0:5'",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			requireKind(t, v.Validate(q), KindForbiddenOperation)
		})
	}
}

func TestValidatorAllowsReads(t *testing.T) {
	t.Parallel()

	v := NewValidator(DefaultLimits())
	queries := []string{
		"SELECT id, name FROM users WHERE created_at > '2024-01-01'",
		"SELECT c.name, COUNT(o.id) FROM customers c LEFT JOIN orders o ON o.customer_id = c.id GROUP BY c.name",
		"SELECT updated_at, deleted_flag FROM audit",
		"WITH t AS (SELECT 1 AS n) SELECT n FROM t",
	}
	for _, q := range queries {
		require.NoError(t, v.Validate(q), q)
	}
}

// Inherited limitation: keywords inside literals are rejected too.
func TestValidatorRejectsKeywordInsideLiteral(t *testing.T) {
	t.Parallel()

	v := NewValidator(DefaultLimits())
	requireKind(t, v.Validate("SELECT * FROM logs WHERE action = 'DROP'"), KindForbiddenOperation)
}

func TestValidatorLength(t *testing.T) {
	t.Parallel()

	v := NewValidator(DefaultLimits())
	base := "SELECT 1 AS x FROM t WHERE a = '"
	atLimit := base + strings.Repeat("a", 10000-len(base)-1) + "'"
	require.Len(t, atLimit, 10000)
	require.NoError(t, v.Validate(atLimit))

	requireKind(t, v.Validate(atLimit+" "), KindQueryTooLong)
}

func TestValidatorComplexity(t *testing.T) {
	t.Parallel()

	v := NewValidator(DefaultLimits())
	twenty := "SELECT " + strings.Repeat("(", 20) + "1" + strings.Repeat(")", 20)
	require.NoError(t, v.Validate(twenty))

	requireKind(t, v.Validate("SELECT "+strings.Repeat("(", 21)+"1"+strings.Repeat(")", 21)), KindQueryTooComplex)
}

func TestValidatorOrderFirstViolationWins(t *testing.T) {
	t.Parallel()

	v := NewValidator(DefaultLimits())
	long := "DELETE FROM t WHERE " + strings.Repeat("(", 30) + strings.Repeat("x", 11000)
	requireKind(t, v.Validate(long), KindForbiddenOperation)

	longAndNested := "SELECT " + strings.Repeat("(", 30) + strings.Repeat("x", 11000)
	requireKind(t, v.Validate(longAndNested), KindQueryTooLong)
}

func TestValidatorCustomLimits(t *testing.T) {
	t.Parallel()

	v := NewValidator(Limits{MaxQueryLength: 10, MaxParentheses: 1})
	require.NoError(t, v.Validate("SELECT (1)"))
	requireKind(t, v.Validate("SELECT 1234"), KindQueryTooLong)
	requireKind(t, v.Validate("SELECT((1"), KindQueryTooComplex)
}
