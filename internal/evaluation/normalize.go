package evaluation

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	floatScale    = 1e6
	isoTimeLayout = "2006-01-02T15:04:05.000Z"
	keyDelimiter  = "|"
)

// NormalizeColumnName lower-cases and trims a column name.
func NormalizeColumnName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeColumns normalizes every name, keeping order.
func NormalizeColumns(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = NormalizeColumnName(c)
	}
	return out
}

// NormalizeValue canonicalizes a cell: strings are trimmed, non-integral
// numbers are rounded to 6 decimals, integral numbers become int64 and
// times become ISO-8601 UTC strings.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return strings.TrimSpace(x)
	case float64:
		return normalizeFloat(x)
	case float32:
		return normalizeFloat(float64(x))
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case time.Time:
		return x.UTC().Format(isoTimeLayout)
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC().Format(isoTimeLayout)
	default:
		return v
	}
}

// normalizeFloat rounds away float noise. Non-finite values become the
// strings "NaN", "Infinity" and "-Infinity" so that NaN equals itself and
// verdicts stay JSON-encodable.
func normalizeFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f != math.Trunc(f) {
		f = math.Round(f*floatScale) / floatScale
	}
	if f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
		return int64(f)
	}
	return f
}

// NormalizeRow returns a copy of row with normalized keys and values.
func NormalizeRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[NormalizeColumnName(k)] = NormalizeValue(v)
	}
	return out
}

// Normalize canonicalizes a result: column names, cell values and a
// deterministic row order independent of the database's emission order.
func Normalize(result *QueryResult) NormalizedResult {
	if result == nil {
		return NormalizedResult{Columns: []string{}, Rows: []Row{}}
	}

	type keyed struct {
		key string
		row Row
	}
	items := make([]keyed, len(result.Rows))
	for i, r := range result.Rows {
		nr := NormalizeRow(r)
		items[i] = keyed{key: sortKey(nr), row: nr}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		return strings.Compare(a.key, b.key)
	})

	rows := make([]Row, len(items))
	for i, it := range items {
		rows[i] = it.row
	}
	return NormalizedResult{Columns: NormalizeColumns(result.Columns), Rows: rows}
}

// sortKey renders a normalized row as key:literal pairs in alphabetical key
// order.
func sortKey(row Row) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(keyDelimiter)
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(literal(row[k]))
	}
	return b.String()
}

func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case string:
		b, _ := json.Marshal(x)
		return string(b)
	default:
		if b, err := json.Marshal(x); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", x)
	}
}
