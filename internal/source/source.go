// Package source retrieves raw cycle snapshots for a device, either from the
// snapshot REST API or from a read-only SQLite export.
package source

import (
	"codeberg.org/mutker/battdiag/internal/errors"
	"codeberg.org/mutker/battdiag/internal/logger"
)

// New opens the backend selected by cfg.
func New(cfg Config) (Fetcher, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	logger.Debug().
		Str("backend", cfg.Backend).
		Msg("Opening data source")

	if cfg.Backend == BackendSQLite {
		store, err := OpenSQLite(cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	client, err := NewHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}
