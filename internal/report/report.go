// Package report renders a dashboard.View as a terminal dashboard.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"codeberg.org/mutker/battdiag/internal/cycle"
	"codeberg.org/mutker/battdiag/internal/dashboard"
	"codeberg.org/mutker/battdiag/internal/tempdist"
	"codeberg.org/mutker/battdiag/internal/trend"
	"github.com/charmbracelet/lipgloss"
)

const (
	barWidth      = 32
	disabledArrow = "·"
)

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

type styles struct {
	title    lipgloss.Style
	subtle   lipgloss.Style
	section  lipgloss.Style
	card     lipgloss.Style
	cardHead lipgloss.Style
	cardBody lipgloss.Style
	bar      lipgloss.Style
	warning  lipgloss.Style
	critical lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		subtle:  r.NewStyle().Foreground(lipgloss.Color("245")),
		section: r.NewStyle().Bold(true).MarginTop(1),
		card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(16),
		cardHead: r.NewStyle().Foreground(lipgloss.Color("245")),
		cardBody: r.NewStyle().Bold(true),
		bar:      r.NewStyle().Foreground(lipgloss.Color("208")),
		warning:  r.NewStyle().Foreground(lipgloss.Color("214")),
		critical: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// Render writes v to w. Colors are only emitted when w is a terminal.
func Render(w io.Writer, v dashboard.View) error {
	st := newStyles(lipgloss.NewRenderer(w))

	var b strings.Builder
	b.WriteString(st.title.Render("Battery diagnostics") + "  " + st.subtle.Render("IMEI "+v.Device))
	b.WriteString("\n")

	switch {
	case v.Loading:
		b.WriteString(st.subtle.Render("Loading cycle data for IMEI: " + v.Device))
		b.WriteString("\n")
	case v.Empty():
		b.WriteString(st.subtle.Render("No cycle data available for IMEI: " + v.Device))
		b.WriteString("\n")
	default:
		writeCycle(&b, st, v)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCycle(b *strings.Builder, st styles, v dashboard.View) {
	s := v.Summary

	b.WriteString(st.subtle.Render("Date: " + s.DateDisplay()))
	b.WriteString("\n")
	b.WriteString(navigation(v))
	b.WriteString("\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card(st, "Avg SOC", withUnit(s.SOCDisplay(), "%")),
		card(st, "SOH Drop", withUnit(s.SOHDrop.String(), "%")),
		card(st, "Avg Temp", withUnit(s.AverageTemperature.Fixed(1), "°C")),
		card(st, "Alerts", strconv.Itoa(s.AlertsTotal)),
	))
	b.WriteString("\n")

	b.WriteString(st.section.Render("Temperature distribution (" + v.Resolution + ")"))
	b.WriteString("\n")
	writeDistribution(b, st, v.Distribution)

	b.WriteString(st.section.Render("Voltage"))
	b.WriteString("\n")
	for _, row := range []struct {
		label string
		value cycle.Scalar
	}{
		{"Max", s.VoltageMax},
		{"Avg", s.VoltageAvg},
		{"Min", s.VoltageMin},
	} {
		fmt.Fprintf(b, "  %-4s %s\n", row.label, withUnit(row.value.String(), " V"))
	}

	b.WriteString(st.section.Render("SOH drop trend"))
	b.WriteString("\n")
	writeTrend(b, st, v.Trend)

	if s.HasAlerts() {
		b.WriteString(st.section.Render("Critical safety events"))
		b.WriteString("\n")
		for _, msg := range s.Warnings {
			b.WriteString("  " + st.warning.Render("Warning: "+msg) + "\n")
		}
		for _, msg := range s.Protections {
			b.WriteString("  " + st.critical.Render("Protection: "+msg) + "\n")
		}
	}
}

// navigation renders the previous/next controls; an arrow at the edge of the
// series is replaced by a disabled marker.
func navigation(v dashboard.View) string {
	prev, next := "◀", "▶"
	if !v.HasPrev {
		prev = disabledArrow
	}
	if !v.HasNext {
		next = disabledArrow
	}

	position := "not in loaded series"
	if !v.Detached {
		position = fmt.Sprintf("%d/%d", v.Index+1, v.Count)
	}

	return fmt.Sprintf("%s  Cycle %s (%s)  %s", prev, v.Summary.CycleDisplay(), position, next)
}

func card(st styles, title, value string) string {
	return st.card.Render(st.cardHead.Render(title) + "\n" + st.cardBody.Render(value))
}

func withUnit(value, unit string) string {
	if value == cycle.Placeholder {
		return value
	}
	return value + unit
}

func writeDistribution(b *strings.Builder, st styles, buckets []tempdist.Bucket) {
	if len(buckets) == 0 {
		b.WriteString(st.subtle.Render("  No temperature data") + "\n")
		return
	}

	width := 0
	peak := 0.0
	for _, bk := range buckets {
		width = max(width, lipgloss.Width(bk.Range))
		peak = max(peak, bk.Minutes)
	}

	for _, bk := range buckets {
		n := 0
		if peak > 0 && bk.Minutes > 0 {
			n = max(1, int(math.Round(bk.Minutes/peak*barWidth)))
		}
		fmt.Fprintf(b, "  %*s°C %s %s min\n",
			width, bk.Range,
			st.bar.Render(strings.Repeat("█", n)),
			strconv.FormatFloat(bk.Minutes, 'f', -1, 64))
	}
}

func writeTrend(b *strings.Builder, st styles, s trend.Series) {
	if s.Len() == 0 {
		b.WriteString(st.subtle.Render("  No trend data") + "\n")
		return
	}

	lo, hi := s.Bounds()
	fmt.Fprintf(b, "  %s\n", Sparkline(s.Values))
	fmt.Fprintf(b, "  %s\n", st.subtle.Render(fmt.Sprintf("cycles %s-%s, drop %s..%s",
		formatNumber(s.Labels[0]), formatNumber(s.Labels[s.Len()-1]),
		formatNumber(lo), formatNumber(hi))))
}

// Sparkline maps values onto eight block heights between their min and max.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := trend.Series{Values: values}.Bounds()
	top := len(sparkTicks) - 1

	var sb strings.Builder
	for _, v := range values {
		level := top / 2
		if hi > lo {
			level = int(math.Round((v - lo) / (hi - lo) * float64(top)))
		}
		sb.WriteRune(sparkTicks[level])
	}
	return sb.String()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
