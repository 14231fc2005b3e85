package evaluation

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompareRowOrderIndependent(t *testing.T) {
	t.Parallel()

	expected := result([]string{"id", "name"},
		Row{"id": int64(1), "name": "a"}, Row{"id": int64(2), "name": "b"})
	student := result([]string{"id", "name"},
		Row{"id": int64(2), "name": "b"}, Row{"id": int64(1), "name": "a"})

	cmp := Compare(student, expected)
	require.True(t, cmp.IsExactMatch)
	require.Empty(t, cmp.Differences)
}

func TestCompareColumnOrderIndependent(t *testing.T) {
	t.Parallel()

	expected := result([]string{"id", "name"}, Row{"id": int64(1), "name": "a"})
	student := result([]string{"NAME", "Id"}, Row{"NAME": "a", "Id": int64(1)})

	cmp := Compare(student, expected)
	require.True(t, cmp.ColumnsMatch)
	require.True(t, cmp.IsExactMatch)
}

func TestCompareColumnSetMismatch(t *testing.T) {
	t.Parallel()

	expected := result([]string{"id", "name"}, Row{"id": int64(1), "name": "a"})
	student := result([]string{"id", "email"}, Row{"id": int64(1), "email": "a@x"})

	cmp := Compare(student, expected)
	require.False(t, cmp.ColumnsMatch)
	require.True(t, cmp.RowCountMatch)
	require.False(t, cmp.DataMatches)
	require.False(t, cmp.IsExactMatch)
	require.Len(t, cmp.Differences, 1)

	d := cmp.Differences[0]
	require.Equal(t, ColumnMismatch, d.Type)
	require.Equal(t, []string{"name"}, d.Expected)
	require.Equal(t, []string{"email"}, d.Actual)
	require.Contains(t, d.Description, "Missing columns: name")
	require.Contains(t, d.Description, "Unexpected columns: email")
}

func TestCompareColumnCountMismatch(t *testing.T) {
	t.Parallel()

	expected := result([]string{"id", "name"})
	student := result([]string{"id"})

	cmp := Compare(student, expected)
	require.False(t, cmp.ColumnsMatch)
	require.Equal(t, "Expected 2 columns, got 1.", cmp.Differences[0].Description)
}

func TestCompareDuplicateColumns(t *testing.T) {
	t.Parallel()

	expected := result([]string{"id", "name"})
	student := result([]string{"id", "ID"})

	cmp := Compare(student, expected)
	require.False(t, cmp.ColumnsMatch)
	require.Contains(t, cmp.Differences[0].Description, `Duplicate column name "id"`)
}

func TestCompareRowCountMismatch(t *testing.T) {
	t.Parallel()

	expected := result([]string{"id"}, Row{"id": int64(1)}, Row{"id": int64(2)}, Row{"id": int64(3)})
	student := result([]string{"id"}, Row{"id": int64(1)}, Row{"id": int64(2)})

	cmp := Compare(student, expected)
	require.True(t, cmp.ColumnsMatch)
	require.False(t, cmp.RowCountMatch)
	require.False(t, cmp.DataMatches)
	require.Len(t, cmp.Differences, 1)
	require.Equal(t, RowCountMismatch, cmp.Differences[0].Type)
	require.Equal(t, 3, cmp.Differences[0].Expected)
	require.Equal(t, 2, cmp.Differences[0].Actual)
}

func TestCompareUsesRowsNotCachedCount(t *testing.T) {
	t.Parallel()

	expected := result([]string{"id"}, Row{"id": int64(1)})
	student := result([]string{"id"}, Row{"id": int64(1)})
	student.RowCount = 99

	require.True(t, Compare(student, expected).IsExactMatch)
}

func TestCompareBothStructuralMismatches(t *testing.T) {
	t.Parallel()

	expected := result([]string{"id"}, Row{"id": int64(1)})
	student := result([]string{"name"})

	cmp := Compare(student, expected)
	require.Len(t, cmp.Differences, 2)
	require.Equal(t, ColumnMismatch, cmp.Differences[0].Type)
	require.Equal(t, RowCountMismatch, cmp.Differences[1].Type)
}

func TestCompareFloatTolerance(t *testing.T) {
	t.Parallel()

	expected := result([]string{"avg"}, Row{"avg": 3.0000001})
	student := result([]string{"avg"}, Row{"avg": 3.0000002})

	require.True(t, Compare(student, expected).IsExactMatch)
}

func TestCompareIntegerEqualsIntegralFloat(t *testing.T) {
	t.Parallel()

	expected := result([]string{"total"}, Row{"total": int64(10)})
	student := result([]string{"total"}, Row{"total": 10.0})

	require.True(t, Compare(student, expected).IsExactMatch)
}

func TestCompareReportsOnlyFirstDataMismatch(t *testing.T) {
	t.Parallel()

	expected := result([]string{"id", "name"},
		Row{"id": int64(1), "name": "a"},
		Row{"id": int64(2), "name": "b"},
		Row{"id": int64(3), "name": "c"})
	student := result([]string{"name", "id"},
		Row{"id": int64(3), "name": "z"},
		Row{"id": int64(1), "name": "a"},
		Row{"id": int64(2), "name": "y"})

	cmp := Compare(student, expected)
	require.True(t, cmp.ColumnsMatch)
	require.True(t, cmp.RowCountMatch)
	require.False(t, cmp.DataMatches)
	require.Len(t, cmp.Differences, 1)

	d := cmp.Differences[0]
	require.Equal(t, DataMismatch, d.Type)
	require.Equal(t, &Position{Row: 2, Column: "name"}, d.Position)
	require.Equal(t, "b", d.Expected)
	require.Equal(t, "y", d.Actual)
}

func TestCompareNullVersusValue(t *testing.T) {
	t.Parallel()

	expected := result([]string{"city"}, Row{"city": nil})
	student := result([]string{"city"}, Row{"city": ""})

	cmp := Compare(student, expected)
	require.False(t, cmp.DataMatches)
	require.Equal(t, `Row 1, column "city": expected null, got "".`, cmp.Differences[0].Description)
}

func TestCompareCaseAndWhitespaceInValues(t *testing.T) {
	t.Parallel()

	expected := result([]string{"name"}, Row{"name": "Ada"})
	trimmed := result([]string{"name"}, Row{"name": " Ada  "})
	recased := result([]string{"name"}, Row{"name": "ada"})

	require.True(t, Compare(trimmed, expected).IsExactMatch)
	require.False(t, Compare(recased, expected).IsExactMatch)
}

func TestCompareEmptyResults(t *testing.T) {
	t.Parallel()

	cmp := Compare(result([]string{"id"}), result([]string{"id"}))
	require.True(t, cmp.IsExactMatch)
	require.NotNil(t, cmp.Differences)
}

func TestCompareNonFiniteValues(t *testing.T) {
	t.Parallel()

	nan := result([]string{"x"}, Row{"x": math.NaN()}, Row{"x": math.Inf(1)})
	require.True(t, Compare(nan, nan).IsExactMatch)

	cmp := Compare(result([]string{"x"}, Row{"x": math.Inf(-1)}), result([]string{"x"}, Row{"x": 1.5}))
	require.False(t, cmp.DataMatches)
	require.Equal(t, `Row 1, column "x": expected 1.5, got "-Infinity".`, cmp.Differences[0].Description)
	require.Equal(t, "-Infinity", cmp.Differences[0].Actual)

	_, err := json.Marshal(cmp)
	require.NoError(t, err)
}
