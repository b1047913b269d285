package cycle

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/spf13/cast"
)

const (
	// Placeholder is rendered for any scalar that is missing or not a number.
	Placeholder = "--"
	// DatePlaceholder is rendered when a cycle has no usable timestamp.
	DatePlaceholder = "N/A"

	dateLayout = "2006-01-02"
)

// Scalar is an optional number read from a record.
type Scalar struct {
	Value float64
	Valid bool
}

func scalar(r Record, key string) Scalar {
	v, ok := r.Float(key)
	return Scalar{Value: v, Valid: ok}
}

func (s Scalar) String() string {
	if !s.Valid {
		return Placeholder
	}
	return strconv.FormatFloat(s.Value, 'f', -1, 64)
}

// Fixed formats the value with prec decimals, or the placeholder.
func (s Scalar) Fixed(prec int) string {
	if !s.Valid {
		return Placeholder
	}
	return strconv.FormatFloat(s.Value, 'f', prec, 64)
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// Summary is the display-ready projection of one cycle.
type Summary struct {
	CycleNumber        Scalar    `json:"cycle_number"`
	Timestamp          time.Time `json:"-"`
	Date               string    `json:"date"`
	AverageSOC         Scalar    `json:"average_soc"`
	SOHDrop            Scalar    `json:"soh_drop"`
	AverageTemperature Scalar    `json:"average_temperature"`
	VoltageMax         Scalar    `json:"voltage_max"`
	VoltageAvg         Scalar    `json:"voltage_avg"`
	VoltageMin         Scalar    `json:"voltage_min"`
	Warnings           []string  `json:"warnings"`
	Protections        []string  `json:"protections"`
	WarningsCount      int       `json:"warnings_count"`
	ProtectionsCount   int       `json:"protections_count"`
	AlertsTotal        int       `json:"alerts_total"`
}

// Summarize derives the summary fields of r. It never fails.
func Summarize(r Record) Summary {
	s := Summary{
		CycleNumber:        scalar(r, KeyCycleNumber),
		AverageSOC:         scalar(r, KeyAverageSOC),
		SOHDrop:            sohDrop(r),
		AverageTemperature: scalar(r, KeyAverageTemperature),
		VoltageMax:         scalar(r, KeyVoltageMax),
		VoltageAvg:         scalar(r, KeyVoltageAvg),
		VoltageMin:         scalar(r, KeyVoltageMin),
		Timestamp:          timestamp(r),
	}
	s.Date = s.DateDisplay()

	details := alertDetails(r)
	s.Warnings = messages(details[KeyWarnings])
	s.Protections = messages(details[KeyProtections])
	s.WarningsCount = len(s.Warnings)
	s.ProtectionsCount = len(s.Protections)
	s.AlertsTotal = s.WarningsCount + s.ProtectionsCount

	return s
}

// SOCDisplay renders the average state of charge with one decimal.
func (s Summary) SOCDisplay() string {
	return s.AverageSOC.Fixed(1)
}

// CycleDisplay renders the cycle identifier.
func (s Summary) CycleDisplay() string {
	return s.CycleNumber.String()
}

// DateDisplay renders the cycle date or DatePlaceholder.
func (s Summary) DateDisplay() string {
	if s.Timestamp.IsZero() {
		return DatePlaceholder
	}
	return s.Timestamp.Format(dateLayout)
}

// HasAlerts reports whether the cycle raised any warning or protection.
func (s Summary) HasAlerts() bool {
	return s.AlertsTotal > 0
}

// soh_drop defaults to 0 when absent but stays unknown when it is garbage.
func sohDrop(r Record) Scalar {
	if _, ok := r.Lookup(KeySOHDrop); !ok {
		return Scalar{Valid: true}
	}
	return scalar(r, KeySOHDrop)
}

func timestamp(r Record) time.Time {
	v, ok := r.Lookup(KeyTimestamp)
	if !ok {
		return time.Time{}
	}

	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if t == "" {
			return time.Time{}
		}
		parsed, err := cast.ToTimeE(t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Time{}
	}
}

func alertDetails(r Record) map[string]any {
	v, ok := r.Lookup(KeyAlertDetails)
	if !ok {
		return nil
	}
	details, err := cast.ToStringMapE(v)
	if err != nil {
		return nil
	}
	return details
}

func messages(v any) []string {
	switch list := v.(type) {
	case []string:
		return append([]string{}, list...)
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, cast.ToString(item))
		}
		return out
	default:
		return []string{}
	}
}
