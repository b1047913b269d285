package source

import (
	"time"

	"codeberg.org/mutker/battdiag/internal/errors"
)

const (
	DefaultLimit   = 100
	defaultBaseURL = "https://zenfinity-intern-api-104290304048.europe-west1.run.app/api"
)

type Config struct {
	Backend string
	BaseURL string
	// Timeout bounds each request; zero disables it.
	Timeout time.Duration
	DBPath  string
}

func DefaultConfig() Config {
	return Config{
		Backend: BackendAPI,
		BaseURL: defaultBaseURL,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	switch c.Backend {
	case BackendAPI:
		if c.BaseURL == "" {
			return errFactory.New(ErrInvalidBaseURL)
		}
	case BackendSQLite:
		if c.DBPath == "" {
			return errFactory.New(ErrInvalidDBPath)
		}
	default:
		return errFactory.WithData(ErrUnknownBackend, c.Backend)
	}

	if c.Timeout < 0 {
		return errFactory.WithData(ErrInvalidConfig, "negative timeout")
	}

	return nil
}
