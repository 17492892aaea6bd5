package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDomainError(t *testing.T) {
	for _, err := range []error{
		ErrInvalidArgument,
		ErrNotFound,
		ErrUnavailable,
		ErrPermissionDenied,
	} {
		assert.True(t, IsDomainError(err), "%v", err)
		assert.True(t, IsDomainError(fmt.Errorf("wrapped: %w", err)), "wrapped %v", err)
	}

	for _, err := range []error{
		nil,
		ErrVersionConflict,
		ErrConflict,
		ErrInvariantViolation,
		errors.New("plain failure"),
	} {
		assert.False(t, IsDomainError(err), "%v", err)
	}
}
