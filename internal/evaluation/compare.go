package evaluation

import (
	"fmt"
	"sort"
	"strings"
)

// Compare checks student against expected: column sets, row counts and,
// when both agree, the data in normalized order. Only the first data
// discrepancy is reported.
func Compare(student, expected *QueryResult) ComparisonResult {
	res := ComparisonResult{Differences: []ComparisonDifference{}}

	if diff := compareColumns(student.Columns, expected.Columns); diff != nil {
		res.Differences = append(res.Differences, *diff)
	} else {
		res.ColumnsMatch = true
	}

	studentCount, expectedCount := len(student.Rows), len(expected.Rows)
	if studentCount != expectedCount {
		res.Differences = append(res.Differences, ComparisonDifference{
			Type:        RowCountMismatch,
			Description: fmt.Sprintf("Expected %d rows, got %d.", expectedCount, studentCount),
			Expected:    expectedCount,
			Actual:      studentCount,
		})
	} else {
		res.RowCountMatch = true
	}

	if res.ColumnsMatch && res.RowCountMatch {
		if diff := compareData(Normalize(student), Normalize(expected)); diff != nil {
			res.Differences = append(res.Differences, *diff)
		} else {
			res.DataMatches = true
		}
	}

	res.IsExactMatch = res.ColumnsMatch && res.RowCountMatch && res.DataMatches
	return res
}

func compareColumns(studentCols, expectedCols []string) *ComparisonDifference {
	student := NormalizeColumns(studentCols)
	expected := NormalizeColumns(expectedCols)

	if len(student) != len(expected) {
		return &ComparisonDifference{
			Type:        ColumnMismatch,
			Description: fmt.Sprintf("Expected %d columns, got %d.", len(expected), len(student)),
			Expected:    expected,
			Actual:      student,
		}
	}

	studentSet, studentDup := toSet(student)
	expectedSet, expectedDup := toSet(expected)
	if studentDup != "" || expectedDup != "" {
		desc := fmt.Sprintf("Duplicate column name %q in your result.", studentDup)
		if studentDup == "" {
			desc = fmt.Sprintf("Duplicate column name %q in the expected result.", expectedDup)
		}
		return &ComparisonDifference{
			Type:        ColumnMismatch,
			Description: desc,
			Expected:    expected,
			Actual:      student,
		}
	}

	missing := setDifference(expected, studentSet)
	extra := setDifference(student, expectedSet)
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "Missing columns: "+strings.Join(missing, ", ")+".")
	}
	if len(extra) > 0 {
		parts = append(parts, "Unexpected columns: "+strings.Join(extra, ", ")+".")
	}
	return &ComparisonDifference{
		Type:        ColumnMismatch,
		Description: strings.Join(parts, " "),
		Expected:    missing,
		Actual:      extra,
	}
}

// compareData walks both normalized results in sorted order and reports the
// first differing cell, reading student values in expected column order.
func compareData(student, expected NormalizedResult) *ComparisonDifference {
	for i := range expected.Rows {
		want, got := expected.Rows[i], student.Rows[i]
		for _, col := range expected.Columns {
			if valuesEqual(want[col], got[col]) {
				continue
			}
			return &ComparisonDifference{
				Type: DataMismatch,
				Description: fmt.Sprintf("Row %d, column %q: expected %s, got %s.",
					i+1, col, literal(want[col]), literal(got[col])),
				Expected: want[col],
				Actual:   got[col],
				Position: &Position{Row: i + 1, Column: col},
			}
		}
	}
	return nil
}

func valuesEqual(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case int64:
		switch y := b.(type) {
		case int64:
			return x == y
		case float64:
			return float64(x) == y
		}
		return false
	case float64:
		switch y := b.(type) {
		case float64:
			return x == y
		case int64:
			return x == float64(y)
		}
		return false
	}
	if b == nil {
		return false
	}
	return literal(a) == literal(b)
}

func toSet(cols []string) (map[string]struct{}, string) {
	set := make(map[string]struct{}, len(cols))
	dup := ""
	for _, c := range cols {
		if _, ok := set[c]; ok && dup == "" {
			dup = c
		}
		set[c] = struct{}{}
	}
	return set, dup
}

func setDifference(cols []string, other map[string]struct{}) []string {
	var out []string
	for _, c := range cols {
		if _, ok := other[c]; !ok {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
