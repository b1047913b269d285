package cycle_test

import (
	"encoding/json"
	"strings"
	"testing"

	"codeberg.org/mutker/battdiag/internal/cycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeAlerts(t *testing.T) {
	s := cycle.Summarize(cycle.Record{
		"alert_details": map[string]any{
			"warnings":    []any{"w1"},
			"protections": []any{},
		},
	})

	assert.Equal(t, 1, s.WarningsCount)
	assert.Equal(t, 0, s.ProtectionsCount)
	assert.Equal(t, 1, s.AlertsTotal)
	assert.True(t, s.HasAlerts())
	assert.Equal(t, []string{"w1"}, s.Warnings)
}

func TestSummarizeAlertsMissingOrMalformed(t *testing.T) {
	records := []cycle.Record{
		{},
		{"alert_details": nil},
		{"alert_details": "garbage"},
		{"alert_details": map[string]any{"warnings": "not a list", "protections": 3}},
	}

	for _, r := range records {
		s := cycle.Summarize(r)
		assert.Equal(t, 0, s.WarningsCount)
		assert.Equal(t, 0, s.ProtectionsCount)
		assert.Equal(t, 0, s.AlertsTotal)
		assert.False(t, s.HasAlerts())
	}
}

func TestSummarizeMixedAlerts(t *testing.T) {
	s := cycle.Summarize(cycle.Record{
		"alert_details": map[string]any{
			"warnings":    []string{"cell imbalance", "high temp"},
			"protections": []any{"overcurrent"},
		},
	})

	assert.Equal(t, 3, s.AlertsTotal)
	assert.Equal(t, []string{"overcurrent"}, s.Protections)
}

func TestSummarizeAverageSOC(t *testing.T) {
	assert.Equal(t, "87.3", cycle.Summarize(cycle.Record{"average_soc": 87.26}).SOCDisplay())
	assert.Equal(t, "50.0", cycle.Summarize(cycle.Record{"average_soc": "50"}).SOCDisplay())

	missing := cycle.Summarize(cycle.Record{}).SOCDisplay()
	assert.Equal(t, cycle.Placeholder, missing)
	assert.NotContains(t, missing+"%", "NaN")

	garbage := cycle.Summarize(cycle.Record{"average_soc": "n/a"}).SOCDisplay()
	assert.Equal(t, cycle.Placeholder, garbage)
}

func TestSummarizeSOHDrop(t *testing.T) {
	assert.Equal(t, "0", cycle.Summarize(cycle.Record{}).SOHDrop.String())
	assert.Equal(t, "0.25", cycle.Summarize(cycle.Record{"soh_drop": 0.25}).SOHDrop.String())
	assert.Equal(t, cycle.Placeholder, cycle.Summarize(cycle.Record{"soh_drop": "bad"}).SOHDrop.String())
}

func TestSummarizeScalarsFallback(t *testing.T) {
	s := cycle.Summarize(cycle.Record{
		"average_temperature": 31.5,
		"voltage_max":         "4.18",
		"voltage_min":         true,
		"voltage_avg":         map[string]any{"x": 1},
	})

	assert.Equal(t, "31.5", s.AverageTemperature.String())
	assert.Equal(t, "4.18", s.VoltageMax.String())
	assert.Equal(t, "1", s.VoltageMin.String())
	assert.Equal(t, cycle.Placeholder, s.VoltageAvg.String())
	assert.Equal(t, cycle.Placeholder, s.CycleDisplay())
}

func TestSummarizeDate(t *testing.T) {
	assert.Equal(t, "2024-03-01", cycle.Summarize(cycle.Record{"timestamp": "2024-03-01T10:11:12Z"}).Date)
	assert.Equal(t, cycle.DatePlaceholder, cycle.Summarize(cycle.Record{}).Date)
	assert.Equal(t, cycle.DatePlaceholder, cycle.Summarize(cycle.Record{"timestamp": "yesterday-ish"}).Date)
	assert.Equal(t, cycle.DatePlaceholder, cycle.Summarize(cycle.Record{"timestamp": 12}).Date)
}

func TestSummaryJSONNeverEmitsNaN(t *testing.T) {
	s := cycle.Summarize(cycle.Record{"cycle_number": 4, "average_soc": "NaN"})

	b, err := json.Marshal(s)
	require.NoError(t, err)

	out := string(b)
	assert.False(t, strings.Contains(out, "NaN"))
	assert.Contains(t, out, `"average_soc":null`)
	assert.Contains(t, out, `"cycle_number":4`)
	assert.Contains(t, out, `"soh_drop":0`)
}
