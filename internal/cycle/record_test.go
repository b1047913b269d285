package cycle_test

import (
	"testing"

	"codeberg.org/mutker/battdiag/internal/cycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cycleNumbers(series []cycle.Record) []float64 {
	out := make([]float64, len(series))
	for i, r := range series {
		out[i] = r.CycleNumber()
	}
	return out
}

func TestBuildSeriesSortsAscending(t *testing.T) {
	raw := []cycle.Record{
		{"cycle_number": 3.0},
		{"cycle_number": 1.0},
		{"cycle_number": 2.0},
	}

	series := cycle.BuildSeries(raw)

	require.Len(t, series, len(raw))
	assert.Equal(t, []float64{1, 2, 3}, cycleNumbers(series))
}

func TestBuildSeriesDoesNotMutateInput(t *testing.T) {
	raw := []cycle.Record{
		{"cycle_number": 2.0},
		{"cycle_number": 1.0},
	}

	_ = cycle.BuildSeries(raw)

	assert.Equal(t, []float64{2, 1}, cycleNumbers(raw))
}

func TestBuildSeriesEmpty(t *testing.T) {
	series := cycle.BuildSeries(nil)
	assert.NotNil(t, series)
	assert.Empty(t, series)

	assert.Empty(t, cycle.BuildSeries([]cycle.Record{}))
}

func TestBuildSeriesStableForTies(t *testing.T) {
	raw := []cycle.Record{
		{"cycle_number": 5.0, "id": "a"},
		{"cycle_number": 1.0, "id": "b"},
		{"cycle_number": 5.0, "id": "c"},
		{"cycle_number": 5.0, "id": "d"},
	}

	series := cycle.BuildSeries(raw)

	ids := make([]string, len(series))
	for i, r := range series {
		ids[i] = r["id"].(string)
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, ids)
}

func TestBuildSeriesMalformedKeysSortAsZero(t *testing.T) {
	raw := []cycle.Record{
		{"cycle_number": 2},
		{"cycle_number": "not a number", "id": "junk"},
		{"cycle_number": "-1"},
		{"id": "missing"},
		nil,
	}

	series := cycle.BuildSeries(raw)

	require.Len(t, series, 5)
	assert.Equal(t, []float64{-1, 0, 0, 0, 2}, cycleNumbers(series))
	// Malformed records pass through unchanged, in input order among the zeros.
	assert.Equal(t, "junk", series[1]["id"])
	assert.Equal(t, "missing", series[2]["id"])
	assert.Nil(t, series[3])
}

func TestNumber(t *testing.T) {
	n, ok := cycle.Number("12.5")
	assert.True(t, ok)
	assert.Equal(t, 12.5, n)

	n, ok = cycle.Number(int64(7))
	assert.True(t, ok)
	assert.Equal(t, 7.0, n)

	for _, bad := range []any{nil, "abc", "", map[string]any{}, []any{1}} {
		_, ok := cycle.Number(bad)
		assert.False(t, ok, "%#v", bad)
	}
}

func TestIndexOf(t *testing.T) {
	series := cycle.BuildSeries([]cycle.Record{
		{"cycle_number": 10.0},
		{"cycle_number": 11.0},
		{"cycle_number": "12"},
	})

	assert.Equal(t, 0, cycle.IndexOf(series, 10))
	assert.Equal(t, 2, cycle.IndexOf(series, 12))
	assert.Equal(t, -1, cycle.IndexOf(series, 99))
	assert.Equal(t, -1, cycle.IndexOf(nil, 0))
}
