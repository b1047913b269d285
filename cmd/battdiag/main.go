package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/battdiag/internal/api"
	"codeberg.org/mutker/battdiag/internal/config"
	"codeberg.org/mutker/battdiag/internal/dashboard"
	"codeberg.org/mutker/battdiag/internal/errors"
	"codeberg.org/mutker/battdiag/internal/logger"
	"codeberg.org/mutker/battdiag/internal/metrics"
	"codeberg.org/mutker/battdiag/internal/pid"
	"codeberg.org/mutker/battdiag/internal/report"
	"codeberg.org/mutker/battdiag/internal/session"
	"codeberg.org/mutker/battdiag/internal/source"
	"github.com/spf13/pflag"
)

const clearScreen = "\033[H\033[2J"

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level, err := logger.ParseLevel(cfg.LogLevel.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse log level: %v\n", err)
		os.Exit(1)
	}

	// the dashboard owns stdout unless serving
	out := io.Writer(os.Stderr)
	if cfg.Mode == config.ModeServe {
		out = os.Stdout
	}
	logger.InitWithWriter(out, level, logger.IsService())
	logger.Debug().
		Str("mode", cfg.Mode.String()).
		Str("source", cfg.Source).
		Msg("Config loaded")
}

func main() {
	if err := run(); err != nil {
		var appErr errors.Error
		if errors.As(err, &appErr) {
			logger.ErrorWithCode(appErr).Msg("battdiag failed")
		} else {
			logger.Error().Err(err).Msg("battdiag failed")
		}
		os.Exit(1)
	}
}

func run() error {
	rec := metrics.NewService(metrics.Config{Enabled: cfg.Metrics})

	fetcher, err := source.New(source.Config{
		Backend: cfg.Source,
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout,
		DBPath:  cfg.SnapshotDB,
	})
	if err != nil {
		return err
	}
	adapter := source.NewAdapter(fetcher, cfg.Devices, rec)
	defer func() {
		if err := adapter.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close data source")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if cfg.Mode == config.ModeReport {
		return runReport(ctx, adapter, rec)
	}

	if err := pid.Write(cfg.PIDFile); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(cfg.PIDFile); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	if cfg.Mode == config.ModeServe {
		return api.New(adapter, api.Options{
			Limit:      cfg.Limit,
			Resolution: cfg.TempResolution,
			Metrics:    rec,
		}).ListenAndServe(ctx, cfg.Listen)
	}

	return loop(ctx, adapter, rec)
}

func newViewer(adapter *source.Adapter, rec metrics.Recorder) (*session.Viewer, error) {
	return session.New(adapter, session.Options{
		Devices:    adapter.Devices(),
		Limit:      cfg.Limit,
		Resolution: cfg.TempResolution,
		Metrics:    rec,
	})
}

func runReport(ctx context.Context, adapter *source.Adapter, rec metrics.Recorder) error {
	viewer, err := newViewer(adapter, rec)
	if err != nil {
		return err
	}
	defer viewer.Close()

	if err := viewer.Select(ctx, cfg.Device); err != nil {
		return err
	}

	return report.Render(os.Stdout, currentView(ctx, viewer))
}

// loop re-fetches and re-renders the selected device every interval
func loop(ctx context.Context, adapter *source.Adapter, rec metrics.Recorder) error {
	viewer, err := newViewer(adapter, rec)
	if err != nil {
		return err
	}
	defer viewer.Close()

	logger.Info().
		Str("device", cfg.Device).
		Dur("interval", cfg.Interval).
		Msg("Watch mode activated")

	if err := viewer.Select(ctx, cfg.Device); err != nil {
		return err
	}
	if err := redraw(ctx, viewer); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := viewer.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn().Err(err).Msg("Refresh failed")
				continue
			}
			if err := redraw(ctx, viewer); err != nil {
				return err
			}
		}
	}
}

func redraw(ctx context.Context, viewer *session.Viewer) error {
	if _, err := io.WriteString(os.Stdout, clearScreen); err != nil {
		return err
	}
	return report.Render(os.Stdout, currentView(ctx, viewer))
}

// currentView honors --cycle, falling back to the latest cycle when the
// requested one cannot be found
func currentView(ctx context.Context, viewer *session.Viewer) dashboard.View {
	if cfg.Cycle == config.NoCycle {
		return viewer.View()
	}

	view, err := viewer.Goto(ctx, cfg.Cycle)
	if err != nil {
		logger.Warn().
			Err(err).
			Int("cycle", cfg.Cycle).
			Msg("Requested cycle unavailable, showing latest")
		return viewer.View()
	}
	return view
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
