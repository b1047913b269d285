package errors_test

import (
	"fmt"
	"io"
	"testing"

	"codeberg.org/mutker/battdiag/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	f := errors.New()

	assert.Equal(t, "Device is not in the allow-list", f.New(errors.ErrUnknownDevice).Error())
	assert.Equal(t, "custom", f.WithMessage(errors.ErrInternal, "custom").Error())
	assert.Equal(t, "Resource not found: cycle 7", f.WithData(errors.ErrResourceNotFound, "cycle 7").Error())
	assert.Equal(t, "Operation failed: EOF", f.Wrap(errors.ErrOperationFailed, io.EOF).Error())
	assert.Equal(t, "some_unknown_code", f.New(errors.ErrorCode("some_unknown_code")).Error())
}

func TestWrapUnwrap(t *testing.T) {
	err := errors.New().Wrap(errors.ErrOperationFailed, io.EOF)

	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, errors.ErrOperationFailed, err.Code())
}

func TestHasCode(t *testing.T) {
	f := errors.New()
	inner := f.New(errors.ErrTimeout)
	outer := f.Wrap(errors.ErrOperationFailed, inner)
	wrapped := fmt.Errorf("context: %w", outer)

	assert.True(t, errors.HasCode(wrapped, errors.ErrOperationFailed))
	assert.True(t, errors.HasCode(wrapped, errors.ErrTimeout))
	assert.False(t, errors.HasCode(wrapped, errors.ErrUnknownDevice))
	assert.False(t, errors.HasCode(io.EOF, errors.ErrTimeout))
	assert.False(t, errors.HasCode(nil, errors.ErrTimeout))
}

func TestWithDataKeepsCode(t *testing.T) {
	err := errors.New().New(errors.ErrInvalidConfig).WithData("limit")

	assert.Equal(t, errors.ErrInvalidConfig, err.Code())
	assert.Equal(t, "limit", err.GetData())
}
