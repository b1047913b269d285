// Package trend projects an ordered cycle series onto a single metric over
// cycle number for long-range display.
package trend

import "codeberg.org/mutker/battdiag/internal/cycle"

// Series is a metric plotted against cycle numbers. Labels and Values always
// have the same length.
type Series struct {
	Labels []float64 `json:"labels"`
	Values []float64 `json:"values"`
}

// Build plots soh_drop against cycle_number. Missing or non-numeric drops
// plot as 0.
func Build(series []cycle.Record) Series {
	return BuildMetric(series, cycle.KeySOHDrop)
}

// BuildMetric plots an arbitrary numeric key against cycle_number.
func BuildMetric(series []cycle.Record, key string) Series {
	out := Series{
		Labels: make([]float64, len(series)),
		Values: make([]float64, len(series)),
	}
	for i, r := range series {
		out.Labels[i] = r.CycleNumber()
		out.Values[i], _ = r.Float(key)
	}
	return out
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Labels)
}

// Bounds returns the smallest and largest value, or zeros for an empty series.
func (s Series) Bounds() (lo, hi float64) {
	for i, v := range s.Values {
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}
	return lo, hi
}
