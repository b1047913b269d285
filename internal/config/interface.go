package config

import "codeberg.org/mutker/battdiag/internal/errors"

// Mode selects what the binary does after loading its first series
type Mode string

const (
	// ModeReport renders the dashboard once and exits
	ModeReport Mode = "report"
	// ModeWatch re-renders the dashboard every interval
	ModeWatch Mode = "watch"
	// ModeServe serves dashboard views over HTTP
	ModeServe Mode = "serve"
)

// IsValid returns whether the mode is known
func (m Mode) IsValid() bool {
	switch m {
	case ModeReport, ModeWatch, ModeServe:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (m Mode) String() string {
	return string(m)
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

const (
	ErrInvalidConfig     = errors.ErrInvalidConfig
	ErrReadConfig        = errors.ErrReadConfig
	ErrBindFlags         = errors.ErrBindFlags
	ErrInvalidInterval   = errors.ErrInvalidInterval
	ErrInvalidResolution = errors.ErrInvalidResolution
	ErrInvalidLogLevel   = errors.ErrInvalidLogLevel
	ErrUnknownDevice     = errors.ErrUnknownDevice
)

// ValidationError describes the offending key of a rejected configuration
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}
