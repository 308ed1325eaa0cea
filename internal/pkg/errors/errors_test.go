package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := ErrInvalidHierarchyRequest.WithMessage("level %s without parent", "kota")
	wrapped := fmt.Errorf("build query: %w", err)

	assert.True(t, Is(wrapped, ErrInvalidHierarchyRequest))
	assert.False(t, Is(wrapped, ErrValidation))
	assert.Equal(t, "Invalid hierarchy request", ErrInvalidHierarchyRequest.Message)
}

func TestYearRequiredIsValidation(t *testing.T) {
	assert.True(t, Is(ErrYearRequired, ErrValidation))
	assert.Equal(t, http.StatusUnprocessableEntity, ErrYearRequired.StatusCode)
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("fetch: %w", ErrTransportFailure.WithDetails(map[string]interface{}{"status": 503}))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeTransportFailure, appErr.Code)
	assert.Equal(t, 503, appErr.Details["status"])
	assert.Empty(t, ErrTransportFailure.Details)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}
