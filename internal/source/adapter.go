package source

import (
	"context"
	"slices"
	"time"

	"codeberg.org/mutker/battdiag/internal/cycle"
	"codeberg.org/mutker/battdiag/internal/errors"
	"codeberg.org/mutker/battdiag/internal/logger"
	"codeberg.org/mutker/battdiag/internal/metrics"
)

// Adapter is the failure-absorbing boundary between a Fetcher and the
// viewer: failures are logged and turned into empty or nil results.
type Adapter struct {
	fetcher Fetcher
	devices []string
	metrics metrics.Recorder
}

func NewAdapter(f Fetcher, devices []string, rec metrics.Recorder) *Adapter {
	if rec == nil {
		rec = metrics.NewService(metrics.DefaultConfig())
	}
	return &Adapter{
		fetcher: f,
		devices: slices.Clone(devices),
		metrics: rec,
	}
}

// Devices returns a copy of the allow-list
func (a *Adapter) Devices() []string {
	return slices.Clone(a.devices)
}

func (a *Adapter) Allowed(deviceID string) bool {
	return slices.Contains(a.devices, deviceID)
}

// FetchSnapshots returns the raw records of a device, or an empty slice on
// failure. A non-positive limit means DefaultLimit.
func (a *Adapter) FetchSnapshots(ctx context.Context, deviceID string, limit int) []cycle.Record {
	if !a.Allowed(deviceID) {
		logger.Warn().
			Str("error_code", string(errors.ErrUnknownDevice)).
			Str("device", deviceID).
			Msg("Refusing to fetch snapshots")
		return []cycle.Record{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	start := time.Now()
	recs, err := a.fetcher.Snapshots(ctx, deviceID, limit)
	a.observe(ctx, "snapshots", start, err)
	if err != nil {
		a.warn(err, "snapshots", deviceID)
		return []cycle.Record{}
	}
	if recs == nil {
		recs = []cycle.Record{}
	}

	logger.Debug().
		Str("device", deviceID).
		Int("records", len(recs)).
		Msg("Fetched snapshots")

	return recs
}

// FetchSummary returns the backend summary, or nil on failure
func (a *Adapter) FetchSummary(ctx context.Context) map[string]any {
	start := time.Now()
	summary, err := a.fetcher.Summary(ctx)
	a.observe(ctx, "summary", start, err)
	if err != nil {
		a.warn(err, "summary", "")
		return nil
	}
	return summary
}

// FetchCycleDetails returns one cycle of a device, or nil on failure
func (a *Adapter) FetchCycleDetails(ctx context.Context, deviceID string, cycleNumber int) cycle.Record {
	if !a.Allowed(deviceID) {
		logger.Warn().
			Str("error_code", string(errors.ErrUnknownDevice)).
			Str("device", deviceID).
			Msg("Refusing to fetch cycle details")
		return nil
	}

	start := time.Now()
	rec, err := a.fetcher.CycleDetails(ctx, deviceID, cycleNumber)
	a.observe(ctx, "cycle_details", start, err)
	if err != nil {
		a.warn(err, "cycle_details", deviceID)
		return nil
	}
	return rec
}

func (a *Adapter) Close() error {
	return a.fetcher.Close()
}

func (a *Adapter) observe(ctx context.Context, operation string, start time.Time, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case ctx.Err() != nil:
		outcome = metrics.OutcomeCanceled
	case err != nil:
		outcome = metrics.OutcomeError
	}
	a.metrics.ObserveFetch(a.fetcher.Name(), operation, outcome, time.Since(start))
}

func (a *Adapter) warn(err error, operation, deviceID string) {
	event := logger.Warn()
	event.Err(err).
		Str("backend", a.fetcher.Name()).
		Str("operation", operation)
	if deviceID != "" {
		event.Str("device", deviceID)
	}
	var appErr errors.Error
	if errors.As(err, &appErr) {
		event.Str("error_code", string(appErr.Code()))
	}
	event.Msg("Data source request failed")
}
