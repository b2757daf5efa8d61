package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load students: %w", ErrSnapshotUnavailable)

	got := FromError(wrapped)

	assert.Equal(t, ErrSnapshotUnavailable.Code, got.Code)
	assert.Equal(t, http.StatusServiceUnavailable, got.Status)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	got := FromError(errors.New("boom"))

	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.EqualError(t, got, "internal server error: boom")
	assert.Nil(t, FromError(nil))
}

func TestCloneMatchesTemplate(t *testing.T) {
	clone := Clone(ErrValidation, "date must be YYYY-MM-DD")

	assert.Equal(t, "date must be YYYY-MM-DD", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.True(t, errors.Is(clone, ErrValidation))
	assert.False(t, errors.Is(clone, ErrNotFound))
}
