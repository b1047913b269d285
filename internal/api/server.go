// Package api serves dashboard views as JSON. Every request builds its own
// viewer; nothing is shared between requests.
package api

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"codeberg.org/mutker/battdiag/internal/errors"
	"codeberg.org/mutker/battdiag/internal/logger"
	"codeberg.org/mutker/battdiag/internal/metrics"
	"codeberg.org/mutker/battdiag/internal/session"
	"codeberg.org/mutker/battdiag/internal/tempdist"
	"github.com/gorilla/handlers"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Source is the data boundary used by the server, satisfied by
// *source.Adapter
type Source interface {
	session.Source
	Devices() []string
	FetchSummary(ctx context.Context) map[string]any
}

type Options struct {
	Limit      int
	Resolution tempdist.Resolution
	Metrics    metrics.Recorder
}

type Server struct {
	src        Source
	limit      int
	resolution tempdist.Resolution
	metrics    metrics.Recorder
}

func New(src Source, opts Options) *Server {
	rec := opts.Metrics
	if rec == nil {
		rec = metrics.NewService(metrics.DefaultConfig())
	}
	res := opts.Resolution
	if !res.Valid() {
		res = tempdist.DefaultResolution
	}

	return &Server{
		src:        src,
		limit:      opts.Limit,
		resolution: res,
		metrics:    rec,
	}
}

// Handler returns the routes wrapped with access logging and panic recovery
func (s *Server) Handler() http.Handler {
	recovered := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
	)(s.router())

	return handlers.LoggingHandler(logger.Writer(), recovered)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	errFactory := errors.New()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("listen", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errFactory.Wrap(ErrServe, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errFactory.Wrap(ErrShutdown, err)
	}
	logger.Info().Msg("HTTP server stopped")

	return nil
}

func (s *Server) allowed(device string) bool {
	return slices.Contains(s.src.Devices(), device)
}

func (s *Server) viewer() (*session.Viewer, error) {
	return session.New(s.src, session.Options{
		Devices:    s.src.Devices(),
		Limit:      s.limit,
		Resolution: s.resolution,
		Metrics:    s.metrics,
	})
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	logger.Error().Msg(fmt.Sprint(v...))
}
