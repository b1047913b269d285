package tempdist

import "codeberg.org/mutker/battdiag/internal/errors"

const (
	ErrInvalidResolution = errors.ErrInvalidResolution
)
