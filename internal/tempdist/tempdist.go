// Package tempdist turns a cycle's temperature-duration maps into ordered
// bucket series at a selectable resolution.
package tempdist

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"codeberg.org/mutker/battdiag/internal/cycle"
	"codeberg.org/mutker/battdiag/internal/errors"
	"github.com/spf13/cast"
)

// Resolution is a bucket width in degrees Celsius.
type Resolution int

const (
	Res5  Resolution = 5
	Res10 Resolution = 10
	Res15 Resolution = 15
	Res20 Resolution = 20

	DefaultResolution = Res5

	fieldPrefix = "temperature_dist_"
	fieldSuffix = "deg"
)

// Resolutions lists every supported resolution, narrowest first.
var Resolutions = []Resolution{Res5, Res10, Res15, Res20}

var firstInt = regexp.MustCompile(`-?\d+`)

// Bucket is the time spent inside one temperature range.
type Bucket struct {
	Range   string  `json:"range"`
	Minutes float64 `json:"minutes"`
}

// ParseResolution accepts "10", "10deg" and "10°C".
func ParseResolution(s string) (Resolution, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	trimmed = strings.TrimSuffix(trimmed, fieldSuffix)
	trimmed = strings.TrimSuffix(trimmed, "°c")

	n, err := strconv.Atoi(trimmed)
	if err == nil {
		r := Resolution(n)
		if r.Valid() {
			return r, nil
		}
	}

	return 0, errors.New().WithData(ErrInvalidResolution, s)
}

// Valid reports whether r is one of the supported widths.
func (r Resolution) Valid() bool {
	return slices.Contains(Resolutions, r)
}

// Field is the record key holding the distribution for r.
func (r Resolution) Field() string {
	return fieldPrefix + r.String()
}

func (r Resolution) String() string {
	return strconv.Itoa(int(r)) + fieldSuffix
}

// BucketsFor builds the ordered distribution of r at resolution res. A
// missing or malformed field yields an empty series.
func BucketsFor(r cycle.Record, res Resolution) []Bucket {
	raw, ok := r.Lookup(res.Field())
	if !ok {
		return []Bucket{}
	}
	dist, err := cast.ToStringMapE(raw)
	if err != nil {
		return []Bucket{}
	}

	buckets := make([]Bucket, 0, len(dist))
	for label, minutes := range dist {
		m, _ := cycle.Number(minutes)
		buckets = append(buckets, Bucket{Range: label, Minutes: m})
	}

	slices.SortFunc(buckets, func(a, b Bucket) int {
		if c := cmp.Compare(SortKey(a.Range), SortKey(b.Range)); c != 0 {
			return c
		}
		return strings.Compare(a.Range, b.Range)
	})

	return buckets
}

// SortKey is the start of a range label: the first signed integer in it,
// else the whole label read as a number, else 0.
func SortKey(label string) float64 {
	if m := firstInt.FindString(label); m != "" {
		if n, err := strconv.ParseFloat(m, 64); err == nil {
			return n
		}
	}

	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return 0
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(n) {
		return 0
	}
	return n
}

// TotalMinutes sums the minutes across buckets.
func TotalMinutes(buckets []Bucket) float64 {
	var total float64
	for _, b := range buckets {
		total += b.Minutes
	}
	return total
}
