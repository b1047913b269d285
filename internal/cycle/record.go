// Package cycle holds the loosely typed cycle records returned by the
// snapshot API and the canonical ordering and per-cycle summaries derived
// from them.
package cycle

import (
	"cmp"
	"math"
	"slices"

	"github.com/spf13/cast"
)

// Well-known record keys.
const (
	KeyCycleNumber        = "cycle_number"
	KeySOHDrop            = "soh_drop"
	KeyAverageSOC         = "average_soc"
	KeyAverageTemperature = "average_temperature"
	KeyVoltageMax         = "voltage_max"
	KeyVoltageAvg         = "voltage_avg"
	KeyVoltageMin         = "voltage_min"
	KeyTimestamp          = "timestamp"
	KeyAlertDetails       = "alert_details"
	KeyWarnings           = "warnings"
	KeyProtections        = "protections"
)

// Record is one raw cycle as decoded from the wire. Fields may be missing or
// carry unexpected types; every accessor degrades instead of failing.
type Record map[string]any

// Lookup returns the raw value stored under key.
func (r Record) Lookup(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Float coerces the value under key to a finite number.
func (r Record) Float(key string) (float64, bool) {
	v, ok := r.Lookup(key)
	if !ok {
		return 0, false
	}
	return Number(v)
}

// CycleNumber is the ordering key. Missing or non-numeric values count as 0.
func (r Record) CycleNumber() float64 {
	n, _ := r.Float(KeyCycleNumber)
	return n
}

// Number coerces v to a finite float64.
func Number(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	n, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// BuildSeries returns a copy of raw sorted ascending by cycle number. Records
// sharing a cycle number keep their relative order. raw is left untouched.
func BuildSeries(raw []Record) []Record {
	series := make([]Record, len(raw))
	copy(series, raw)

	slices.SortStableFunc(series, func(a, b Record) int {
		return cmp.Compare(a.CycleNumber(), b.CycleNumber())
	})

	return series
}

// IndexOf returns the position of the first record with the given cycle
// number, or -1.
func IndexOf(series []Record, cycleNumber int) int {
	for i, r := range series {
		if n, ok := r.Float(KeyCycleNumber); ok && n == float64(cycleNumber) {
			return i
		}
	}
	return -1
}
