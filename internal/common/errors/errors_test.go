package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabaseError("insert purchase", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, err.IsInternal())
	assert.Equal(t, "insert purchase", err.Details["operation"])
}

func TestAsAppErrorThroughWrapping(t *testing.T) {
	inner := NewConflictError("Algunos números ya no están disponibles")
	wrapped := fmt.Errorf("reserve: %w", inner)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeConflict, appErr.Code)

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestHasCode(t *testing.T) {
	err := NewStateError("La compra ya fue procesada")

	assert.True(t, HasCode(err, ErrCodeState))
	assert.False(t, HasCode(err, ErrCodeConflict))
	assert.False(t, HasCode(nil, ErrCodeState))
	assert.False(t, HasCode(errors.New("plain"), ErrCodeState))
}

func TestWithDetail(t *testing.T) {
	err := NewValidationError("Números inválidos").
		WithDetail("invalid_values", []string{"42"})

	assert.Equal(t, []string{"42"}, err.Details["invalid_values"])
	assert.False(t, err.IsInternal())
}

func TestNotFoundMessage(t *testing.T) {
	err := NewNotFoundError("Rifa", int64(9))

	assert.Equal(t, ErrCodeNotFound, err.Code)
	assert.Contains(t, err.Error(), "Rifa not found")
}
