package database

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestScalar(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	cases := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"int32", int32(7), int64(7)},
		{"uint16", uint16(9), int64(9)},
		{"huge uint", uint64(math.MaxUint64), float64(math.MaxUint64)},
		{"float32", float32(0.5), float64(0.5)},
		{"bytes", []byte("abc"), "abc"},
		{"time", ts, ts},
		{"uuid array", [16]byte(id), id.String()},
		{"bool", true, true},
		{"slice", []int{1, 2}, "[1 2]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Scalar(tc.in))
		})
	}
}
