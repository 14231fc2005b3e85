package evaluation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joacominatel/sqlgrader/internal/database"
)

func TestExecuteWrapsResult(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner().on("SELECT id, name FROM users", fakeResponse{
		raw: raw([]string{"id", "Name"}, []any{int64(1), "Ada"}, []any{int64(2), "Grace"}),
	})
	ex := NewExecutor(runner, DefaultLimits(), nil)

	res, err := ex.Execute(context.Background(), "SELECT id,   name\nFROM users -- all", 1, "student")
	require.NoError(t, err)
	require.Equal(t, []string{"id", "Name"}, res.Columns)
	require.Equal(t, 2, res.RowCount)
	require.Len(t, res.Rows, res.RowCount)
	require.Equal(t, Row{"id": int64(1), "Name": "Ada"}, res.Rows[0])
	require.GreaterOrEqual(t, res.ExecutionTimeMs, int64(0))

	require.Equal(t, []string{"SELECT id, name FROM users"}, runner.seen())
	require.Equal(t, []int{5001}, runner.limits)
}

func TestExecuteValidationErrorSkipsDatabase(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	ex := NewExecutor(runner, DefaultLimits(), nil)

	_, err := ex.Execute(context.Background(), "DELETE FROM users", 1, "student")
	requireKind(t, err, KindForbiddenOperation)
	require.Empty(t, runner.seen())
}

func TestExecuteEmptyAfterSanitize(t *testing.T) {
	t.Parallel()

	ex := NewExecutor(newFakeRunner(), DefaultLimits(), nil)
	_, err := ex.Execute(context.Background(), "  /* nothing */ -- here", 1, "student")
	requireKind(t, err, KindEmptyQuery)
}

func TestExecuteTimeoutAbandonsUncooperativeDriver(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner().on("SELECT 1 AS n", fakeResponse{
		raw:       raw([]string{"n"}, []any{int64(1)}),
		delay:     2 * time.Second,
		ignoreCtx: true,
	})
	ex := NewExecutor(runner, Limits{Timeout: 50 * time.Millisecond}, nil)

	start := time.Now()
	_, err := ex.Execute(context.Background(), "SELECT 1 AS n", 1, "student")
	requireKind(t, err, KindTimeout)
	require.Less(t, time.Since(start), time.Second)
}

func TestExecuteTimeoutFromCancellingDriver(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner().on("SELECT 1 AS n", fakeResponse{delay: time.Second})
	ex := NewExecutor(runner, Limits{Timeout: 20 * time.Millisecond}, nil)

	_, err := ex.Execute(context.Background(), "SELECT 1 AS n", 1, "student")
	requireKind(t, err, KindTimeout)
}

func TestExecuteParentCancellationIsNotTimeout(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner().on("SELECT 1 AS n", fakeResponse{delay: time.Second})
	ex := NewExecutor(runner, DefaultLimits(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ex.Execute(ctx, "SELECT 1 AS n", 1, "student")
	requireKind(t, err, KindExecutionFailed)
}

func TestExecuteResultShape(t *testing.T) {
	t.Parallel()

	rows := make([][]any, 4)
	for i := range rows {
		rows[i] = []any{int64(i)}
	}
	runner := newFakeRunner().
		on("SELECT nothing", fakeResponse{raw: raw(nil)}).
		on("SELECT many", fakeResponse{raw: raw([]string{"n"}, rows...)}).
		on("SELECT broken", fakeResponse{raw: &database.RawResult{Fields: []database.Field{{Name: "n"}}}}).
		on("SELECT null", fakeResponse{})
	ex := NewExecutor(runner, Limits{MaxRows: 3}, nil)
	ctx := context.Background()

	_, err := ex.Execute(ctx, "SELECT nothing", 1, "student")
	requireKind(t, err, KindNoColumns)

	_, err = ex.Execute(ctx, "SELECT many", 1, "student")
	requireKind(t, err, KindTooManyRows)

	_, err = ex.Execute(ctx, "SELECT broken", 1, "student")
	requireKind(t, err, KindInvalidResult)

	_, err = ex.Execute(ctx, "SELECT null", 1, "student")
	requireKind(t, err, KindInvalidResult)
}

func TestExecuteExactlyMaxRowsIsAccepted(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner().on("SELECT n", fakeResponse{
		raw: raw([]string{"n"}, []any{int64(1)}, []any{int64(2)}, []any{int64(3)}),
	})
	ex := NewExecutor(runner, Limits{MaxRows: 3}, nil)

	res, err := ex.Execute(context.Background(), "SELECT n", 1, "student")
	require.NoError(t, err)
	require.Equal(t, 3, res.RowCount)
}

func TestExecuteDriverErrorIsSanitized(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner().on("SELECT 1 AS n", fakeResponse{
		err: errors.New("connect failed: password=topsecret " + strings.Repeat("x", 800)),
	})
	ex := NewExecutor(runner, DefaultLimits(), nil)

	_, err := ex.Execute(context.Background(), "SELECT 1 AS n", 1, "student")
	requireKind(t, err, KindExecutionFailed)
	require.NotContains(t, err.Error(), "topsecret")

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	require.LessOrEqual(t, len(qe.Err.Error()), 500)
}
