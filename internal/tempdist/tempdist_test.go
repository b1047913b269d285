package tempdist_test

import (
	"math"
	"testing"

	"codeberg.org/mutker/battdiag/internal/cycle"
	"codeberg.org/mutker/battdiag/internal/errors"
	"codeberg.org/mutker/battdiag/internal/tempdist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ranges(buckets []tempdist.Bucket) []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.Range
	}
	return out
}

func minutes(buckets []tempdist.Bucket) []float64 {
	out := make([]float64, len(buckets))
	for i, b := range buckets {
		out[i] = b.Minutes
	}
	return out
}

func TestBucketsForOrdersByRangeStart(t *testing.T) {
	r := cycle.Record{
		"temperature_dist_10deg": map[string]any{"20-25": 30.0, "-5-0": 10.0, "10-15": 5.0},
	}

	buckets := tempdist.BucketsFor(r, tempdist.Res10)

	assert.Equal(t, []string{"-5-0", "10-15", "20-25"}, ranges(buckets))
	assert.Equal(t, []float64{10, 5, 30}, minutes(buckets))
}

func TestBucketsForMissingField(t *testing.T) {
	r := cycle.Record{"temperature_dist_5deg": map[string]any{"0-5": 1.0}}

	for _, res := range []tempdist.Resolution{tempdist.Res10, tempdist.Res15, tempdist.Res20} {
		buckets := tempdist.BucketsFor(r, res)
		assert.NotNil(t, buckets)
		assert.Empty(t, buckets)
	}
	assert.Empty(t, tempdist.BucketsFor(cycle.Record{}, tempdist.Res5))
	assert.Empty(t, tempdist.BucketsFor(nil, tempdist.Res5))
}

func TestBucketsForMalformedField(t *testing.T) {
	assert.Empty(t, tempdist.BucketsFor(cycle.Record{"temperature_dist_5deg": "oops"}, tempdist.Res5))
	assert.Empty(t, tempdist.BucketsFor(cycle.Record{"temperature_dist_5deg": []any{1, 2}}, tempdist.Res5))
}

func TestBucketsForRecomputesPerResolution(t *testing.T) {
	r := cycle.Record{
		"temperature_dist_5deg":  map[string]any{"25-30": 4.0, "20-25": 6.0},
		"temperature_dist_20deg": map[string]any{"20-40": 10.0},
	}

	assert.Equal(t, []string{"20-25", "25-30"}, ranges(tempdist.BucketsFor(r, tempdist.Res5)))
	assert.Equal(t, []string{"20-40"}, ranges(tempdist.BucketsFor(r, tempdist.Res20)))
	assert.Equal(t, 10.0, tempdist.TotalMinutes(tempdist.BucketsFor(r, tempdist.Res5)))
}

func TestBucketsForUnparseableLabelsAndMinutes(t *testing.T) {
	r := cycle.Record{
		"temperature_dist_15deg": map[string]any{
			"hot":    "lots",
			"15-30":  "12",
			"-15-0":  2,
			"cold":   1.5,
			"0-15":   nil,
			"  7.5 ": 3,
		},
	}

	buckets := tempdist.BucketsFor(r, tempdist.Res15)

	// "cold", "hot" and "0-15" all sort at 0; ties are ordered by label.
	assert.Equal(t, []string{"-15-0", "0-15", "cold", "hot", "  7.5 ", "15-30"}, ranges(buckets))
	assert.Equal(t, []float64{2, 0, 1.5, 0, 3, 12}, minutes(buckets))
}

func TestSortKey(t *testing.T) {
	cases := map[string]float64{
		"-10-5":   -10,
		"20-25":   20,
		"<0":      0,
		">45":     45,
		"temp 30": 30,
		"2.5":     2,
		"abc":     0,
		"":        0,
		"   ":     0,
	}
	for label, want := range cases {
		assert.Equal(t, want, tempdist.SortKey(label), label)
	}
	assert.True(t, math.IsInf(tempdist.SortKey("Infinity"), 1))
}

func TestParseResolution(t *testing.T) {
	for in, want := range map[string]tempdist.Resolution{
		"5":      tempdist.Res5,
		"10deg":  tempdist.Res10,
		" 15DEG": tempdist.Res15,
		"20°C":   tempdist.Res20,
	} {
		got, err := tempdist.ParseResolution(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "7", "deg", "25deg", "-5"} {
		_, err := tempdist.ParseResolution(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.HasCode(err, errors.ErrInvalidResolution))
	}
}

func TestResolutionField(t *testing.T) {
	assert.Equal(t, "temperature_dist_10deg", tempdist.Res10.Field())
	assert.Equal(t, "20deg", tempdist.Res20.String())
	assert.True(t, tempdist.DefaultResolution.Valid())
	assert.False(t, tempdist.Resolution(3).Valid())
}
