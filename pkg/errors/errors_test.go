package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsPlainErrors(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	require.NotNil(t, err)
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.EqualError(t, err, "internal server error: boom")
}

func TestCloneKeepsIdentity(t *testing.T) {
	cloned := Clone(ErrPreconditionFailed, "no sections left for Networks")
	assert.Equal(t, "no sections left for Networks", cloned.Message)
	assert.Equal(t, "precondition failed", ErrPreconditionFailed.Message)
	assert.True(t, errors.Is(cloned, ErrPreconditionFailed))
	assert.False(t, errors.Is(cloned, ErrValidation))
}

func TestWrapUnwraps(t *testing.T) {
	err := Wrap(context.DeadlineExceeded, ErrTimeout.Code, ErrTimeout.Status, "search timed out")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Same(t, err, FromError(fmt.Errorf("outer: %w", err)))
}
