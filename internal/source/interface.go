package source

import (
	"context"

	"codeberg.org/mutker/battdiag/internal/cycle"
)

// Backend names
const (
	BackendAPI    = "api"
	BackendSQLite = "sqlite"
)

// Fetcher is a raw snapshot backend. Unlike Adapter it reports failures.
type Fetcher interface {
	// Name identifies the backend in logs and metrics
	Name() string

	// Snapshots returns up to limit cycle records of a device, in no
	// particular order
	Snapshots(ctx context.Context, deviceID string, limit int) ([]cycle.Record, error)

	// Summary returns the backend-wide summary object
	Summary(ctx context.Context) (map[string]any, error)

	// CycleDetails returns a single cycle of a device
	CycleDetails(ctx context.Context, deviceID string, cycleNumber int) (cycle.Record, error)

	Close() error
}
