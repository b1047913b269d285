package api

import "codeberg.org/mutker/battdiag/internal/errors"

const (
	ErrServe    = errors.ErrorCode("api_serve_failed")
	ErrShutdown = errors.ErrShutdownFailed
)
