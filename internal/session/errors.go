package session

import "codeberg.org/mutker/battdiag/internal/errors"

const (
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrUnknownDevice = errors.ErrUnknownDevice
	ErrSuperseded    = errors.ErrSuperseded
	ErrCycleNotFound = errors.ErrResourceNotFound
)
