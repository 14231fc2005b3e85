package evaluation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeValue(t *testing.T) {
	t.Parallel()

	madrid := time.FixedZone("CET", 3600)
	cases := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"string trimmed", "  Ada \n", "Ada"},
		{"integral float", 3.0, int64(3)},
		{"int32", int32(42), int64(42)},
		{"int64 untouched", int64(1) << 60, int64(1) << 60},
		{"rounded up", 3.0000001, int64(3)},
		{"six decimals", 1.23456789, 1.234568},
		{"negative", -0.1234564, -0.123456},
		{"bool", true, true},
		{"time utc", time.Date(2024, 5, 6, 8, 0, 0, 0, madrid), "2024-05-06T07:00:00.000Z"},
		{"time millis", time.Date(2024, 5, 6, 7, 0, 0, 123456789, time.UTC), "2024-05-06T07:00:00.123Z"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizeValue(tc.in))
		})
	}
}

func TestNormalizeValueNonFinite(t *testing.T) {
	t.Parallel()

	require.Equal(t, "NaN", NormalizeValue(math.NaN()))
	require.Equal(t, "Infinity", NormalizeValue(math.Inf(1)))
	require.Equal(t, "-Infinity", NormalizeValue(float32(math.Inf(-1))))
}

func TestNormalizeFloatNoise(t *testing.T) {
	t.Parallel()

	require.Equal(t, NormalizeValue(3.0000001), NormalizeValue(3.0000002))
	require.Equal(t, NormalizeValue(0.1+0.2), NormalizeValue(0.3))
}

func TestNormalizeColumnsAndRows(t *testing.T) {
	t.Parallel()

	in := result([]string{" ID ", "Name"},
		Row{" ID ": int64(2), "Name": " b "},
		Row{" ID ": int64(1), "Name": "a"},
	)
	out := Normalize(in)

	require.Equal(t, []string{"id", "name"}, out.Columns)
	require.Equal(t, []Row{
		{"id": int64(1), "name": "a"},
		{"id": int64(2), "name": "b"},
	}, out.Rows)

	// input untouched
	require.Equal(t, " b ", in.Rows[0]["Name"])
}

func TestNormalizeOrderIndependentOfColumnOrder(t *testing.T) {
	t.Parallel()

	a := Normalize(result([]string{"id", "name"},
		Row{"id": int64(1), "name": "x"}, Row{"id": int64(2), "name": "y"}))
	b := Normalize(result([]string{"name", "id"},
		Row{"name": "y", "id": int64(2)}, Row{"name": "x", "id": int64(1)}))

	require.Equal(t, a.Rows, b.Rows)
}

func TestNormalizeDeterministicWithNulls(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{"city": nil, "id": int64(3)},
		{"city": "London", "id": int64(1)},
		{"city": "Arlington", "id": int64(2)},
	}
	first := Normalize(result([]string{"id", "city"}, rows...))
	second := Normalize(result([]string{"id", "city"}, rows[2], rows[0], rows[1]))
	require.Equal(t, first.Rows, second.Rows)
}

func TestSortKey(t *testing.T) {
	t.Parallel()

	key := sortKey(Row{"name": "Ada", "id": int64(1), "score": 1.5, "active": true, "city": nil})
	require.Equal(t, `active:true|city:null|id:1|name:"Ada"|score:1.5`, key)
}

func TestNormalizeNil(t *testing.T) {
	t.Parallel()

	out := Normalize(nil)
	require.Empty(t, out.Columns)
	require.Empty(t, out.Rows)
}
