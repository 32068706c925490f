package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/zatekoja/restaurantdiscovery/backend/pkg/errors"
)

func TestAppError_ErrorIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperrors.NewInternalError("failed to list restaurants", cause)

	assert.Equal(t, "INTERNAL: failed to list restaurants: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestIsType_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("search: %w", apperrors.NewLocationNotFoundError("location not found", nil))

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeLocationNotFound))
	assert.False(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	assert.False(t, apperrors.IsType(errors.New("plain"), apperrors.ErrorTypeInternal))
}

func TestAs_ReturnsDetails(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", apperrors.NewValidationError("invalid search criteria", map[string]string{
		"limit": "limit must be between 1 and 100",
	}))

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, "limit must be between 1 and 100", appErr.Details["limit"])
}
