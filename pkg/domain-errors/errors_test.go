package dErrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct error", func(t *testing.T) {
		err := New(CodeValidation, "age out of range")
		assert.True(t, HasCode(err, CodeValidation))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		inner := New(CodeInvariantViolation, "score out of range")
		outer := fmt.Errorf("evaluate: %w", inner)
		assert.True(t, HasCode(outer, CodeInvariantViolation))
	})

	t.Run("false for non-domain errors", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load session")

	require.Error(t, err)
	assert.True(t, HasCode(err, CodeInternal))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to load session")

	t.Run("nil cause still yields coded error", func(t *testing.T) {
		err := Wrap(nil, CodeNotFound, "session not found")
		assert.True(t, HasCode(err, CodeNotFound))
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeIncompleteProfile, CodeOf(New(CodeIncompleteProfile, "donor missing")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}
