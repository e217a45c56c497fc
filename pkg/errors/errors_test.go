package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndIsCode(t *testing.T) {
	base := errors.New("dial tcp: refused")
	err := Wrap("predictor_error", "prediction request failed", base)

	require.Equal(t, "prediction request failed: dial tcp: refused", err.Error())
	require.True(t, IsCode(err, "predictor_error"))
	require.False(t, IsCode(err, "invalid_input"))
	require.ErrorIs(t, err, base)

	wrapped := fmt.Errorf("handler: %w", err)
	require.True(t, IsCode(wrapped, "predictor_error"))
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap("invalid_input", "shape is required", nil)
	require.Equal(t, "shape is required", err.Error())
	require.Nil(t, errors.Unwrap(err))
	require.False(t, IsCode(errors.New("plain"), "invalid_input"))
}

func TestCode(t *testing.T) {
	require.Equal(t, CodeStorageError, Code(Wrap(CodeStorageError, "history unavailable", nil)))
	require.Equal(t, CodeInvalidInput, Code(fmt.Errorf("outer: %w", Wrap(CodeInvalidInput, "bad", nil))))
	require.Empty(t, Code(errors.New("plain")))
	require.Empty(t, Code(nil))
}
