// Package dashboard assembles everything a renderer needs for one device
// into a single View. Views are recomputed from scratch on every call.
package dashboard

import (
	"codeberg.org/mutker/battdiag/internal/cursor"
	"codeberg.org/mutker/battdiag/internal/cycle"
	"codeberg.org/mutker/battdiag/internal/tempdist"
	"codeberg.org/mutker/battdiag/internal/trend"
)

// View is the render model of the dashboard.
type View struct {
	Device       string            `json:"device"`
	Loading      bool              `json:"loading"`
	Detached     bool              `json:"detached"`
	Index        int               `json:"index"`
	Count        int               `json:"count"`
	HasPrev      bool              `json:"has_prev"`
	HasNext      bool              `json:"has_next"`
	Resolution   string            `json:"resolution"`
	Summary      cycle.Summary     `json:"summary"`
	Distribution []tempdist.Bucket `json:"temperature_distribution"`
	Trend        trend.Series      `json:"trend"`
}

// Empty reports whether there is no cycle to show.
func (v View) Empty() bool {
	return v.Count == 0 && !v.Detached
}

// Build projects series and the cursor position into a View.
func Build(device string, series []cycle.Record, cur *cursor.Cursor, res tempdist.Resolution) View {
	current := cur.Current(series)

	return View{
		Device:       device,
		Index:        cur.Index(),
		Count:        len(series),
		HasPrev:      cur.HasPrev(),
		HasNext:      cur.HasNext(),
		Resolution:   res.String(),
		Summary:      cycle.Summarize(current),
		Distribution: tempdist.BucketsFor(current, res),
		Trend:        trend.Build(series),
	}
}

// Loading is the placeholder view shown while a fetch is in flight. It never
// carries data from a previous selection.
func Loading(device string, res tempdist.Resolution) View {
	v := Build(device, nil, cursor.New(0), res)
	v.Loading = true
	return v
}

// Detached shows rec, a cycle fetched on its own, alongside the trend of the
// loaded series. No cursor position applies to it.
func Detached(device string, series []cycle.Record, rec cycle.Record, res tempdist.Resolution) View {
	v := Build(device, series, cursor.New(0), res)
	v.Detached = true
	v.Summary = cycle.Summarize(rec)
	v.Distribution = tempdist.BucketsFor(rec, res)
	return v
}
