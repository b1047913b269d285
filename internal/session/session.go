// Package session owns the viewer state for one selected device: the ordered
// series, the cursor and the temperature resolution. Fetches follow a
// last-request-wins policy.
package session

import (
	"context"
	"slices"
	"sync"

	"codeberg.org/mutker/battdiag/internal/cursor"
	"codeberg.org/mutker/battdiag/internal/cycle"
	"codeberg.org/mutker/battdiag/internal/dashboard"
	"codeberg.org/mutker/battdiag/internal/errors"
	"codeberg.org/mutker/battdiag/internal/logger"
	"codeberg.org/mutker/battdiag/internal/metrics"
	"codeberg.org/mutker/battdiag/internal/tempdist"
)

// Source is the failure-absorbing data boundary, satisfied by *source.Adapter
type Source interface {
	FetchSnapshots(ctx context.Context, deviceID string, limit int) []cycle.Record
	FetchCycleDetails(ctx context.Context, deviceID string, cycleNumber int) cycle.Record
}

type Options struct {
	// Devices is the allow-list; the first entry is the default selection
	Devices    []string
	Limit      int
	Resolution tempdist.Resolution
	Metrics    metrics.Recorder
}

type Viewer struct {
	mu sync.Mutex

	src     Source
	devices []string
	limit   int
	metrics metrics.Recorder

	device     string
	gen        uint64
	cancel     context.CancelFunc
	loading    bool
	series     []cycle.Record
	cursor     *cursor.Cursor
	resolution tempdist.Resolution
}

func New(src Source, opts Options) (*Viewer, error) {
	errFactory := errors.New()

	if src == nil {
		return nil, errFactory.WithMessage(ErrInvalidConfig, "no data source")
	}
	if len(opts.Devices) == 0 {
		return nil, errFactory.WithMessage(ErrInvalidConfig, "empty device allow-list")
	}

	res := opts.Resolution
	if res == 0 {
		res = tempdist.DefaultResolution
	}
	if !res.Valid() {
		return nil, errFactory.WithData(tempdist.ErrInvalidResolution, int(res))
	}

	rec := opts.Metrics
	if rec == nil {
		rec = metrics.NewService(metrics.DefaultConfig())
	}

	return &Viewer{
		src:        src,
		devices:    slices.Clone(opts.Devices),
		limit:      opts.Limit,
		metrics:    rec,
		device:     opts.Devices[0],
		series:     []cycle.Record{},
		cursor:     cursor.New(0),
		resolution: res,
	}, nil
}

// Devices returns the allow-list
func (v *Viewer) Devices() []string {
	return slices.Clone(v.devices)
}

// Device returns the current selection
func (v *Viewer) Device() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.device
}

func (v *Viewer) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Select switches to device and loads its series. While the fetch is in
// flight the viewer shows an empty loading state. If another Select or
// Refresh starts before this one completes, this fetch is canceled and its
// result discarded with ErrSuperseded. A failed fetch leaves an empty series.
func (v *Viewer) Select(ctx context.Context, device string) error {
	if !slices.Contains(v.devices, device) {
		return errors.New().WithData(ErrUnknownDevice, device)
	}

	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}
	v.gen++
	gen := v.gen
	fetchCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.device = device
	v.loading = true
	v.series = []cycle.Record{}
	v.cursor = cursor.New(0)
	limit := v.limit
	v.mu.Unlock()

	logger.Debug().
		Str("device", device).
		Uint64("generation", gen).
		Msg("Loading cycle series")

	raw := v.src.FetchSnapshots(fetchCtx, device, limit)
	series := cycle.BuildSeries(raw)

	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen {
		cancel()
		v.metrics.ObserveSuperseded()
		logger.Debug().
			Str("device", device).
			Uint64("generation", gen).
			Msg("Discarding superseded fetch")
		return errors.New().WithData(ErrSuperseded, device)
	}

	cancel()
	v.cancel = nil
	v.loading = false
	v.series = series
	v.cursor.OnSeriesChanged(len(series))
	v.metrics.ObserveSeries(device, len(series))

	logger.Info().
		Str("device", device).
		Int("cycles", len(series)).
		Msg("Cycle series loaded")

	return nil
}

// Refresh reloads the current device
func (v *Viewer) Refresh(ctx context.Context) error {
	return v.Select(ctx, v.Device())
}

// SetIndex moves the cursor, clamped to the series
func (v *Viewer) SetIndex(i int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cursor.SetIndex(i)
}

// Step moves the cursor by delta and reports whether it moved
func (v *Viewer) Step(delta int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cursor.Step(delta)
}

// SetResolution changes the temperature bucket width
func (v *Viewer) SetResolution(res tempdist.Resolution) error {
	if !res.Valid() {
		return errors.New().WithData(tempdist.ErrInvalidResolution, int(res))
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.resolution = res
	return nil
}

func (v *Viewer) Resolution() tempdist.Resolution {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.resolution
}

// Series returns a copy of the ordered series
func (v *Viewer) Series() []cycle.Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.series)
}

// Current returns the record under the cursor, or an empty record
func (v *Viewer) Current() cycle.Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cursor.Current(v.series)
}

// View projects the current state for rendering
func (v *Viewer) View() dashboard.View {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.view()
}

func (v *Viewer) view() dashboard.View {
	if v.loading {
		return dashboard.Loading(v.device, v.resolution)
	}
	return dashboard.Build(v.device, v.series, v.cursor, v.resolution)
}

// Goto shows the cycle with the given number. Cycles in the loaded series
// move the cursor; others are fetched on their own and shown detached,
// leaving the cursor where it was.
func (v *Viewer) Goto(ctx context.Context, cycleNumber int) (dashboard.View, error) {
	v.mu.Lock()
	if !v.loading && v.cursor.Seek(v.series, cycleNumber) {
		view := v.view()
		v.mu.Unlock()
		return view, nil
	}
	device, gen := v.device, v.gen
	v.mu.Unlock()

	rec := v.src.FetchCycleDetails(ctx, device, cycleNumber)

	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen {
		return v.view(), errors.New().WithData(ErrSuperseded, device)
	}
	if rec == nil {
		return v.view(), errors.New().WithData(ErrCycleNotFound, struct {
			Device string
			Cycle  int
		}{
			Device: device,
			Cycle:  cycleNumber,
		})
	}

	return dashboard.Detached(device, v.series, rec, v.resolution), nil
}

// Close cancels any fetch still in flight
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}
