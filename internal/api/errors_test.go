package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/service"
	"github.com/flashdeck/flashdeck-api/internal/service/auth"
	"github.com/flashdeck/flashdeck-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"service not found", service.ErrNotFound, http.StatusNotFound},
		{"deck not found", store.ErrDeckNotFound, http.StatusNotFound},
		{"card not found", store.ErrCardNotFound, http.StatusNotFound},
		{"conflict", service.ErrConflict, http.StatusConflict},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"tag name exists", store.ErrTagNameExists, http.StatusConflict},
		{"validation", domain.ErrDeckNameEmpty, http.StatusBadRequest},
		{"settings validation", domain.ErrMaxBelowEasyMin, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("context: %w", service.ErrNotFound), http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("specific errors get specific messages", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Deck not found", GetSafeErrorMessage(store.ErrDeckNotFound))
		assert.Equal(t, "Email already exists", GetSafeErrorMessage(store.ErrEmailExists))
		assert.Equal(t, "Deck name must not be empty", GetSafeErrorMessage(domain.ErrDeckNameEmpty))
		assert.Equal(t, "Maximum interval must not be below the easy minimum",
			GetSafeErrorMessage(domain.ErrMaxBelowEasyMin))
	})

	t.Run("unknown errors never leak their text", func(t *testing.T) {
		t.Parallel()
		err := errors.New("pq: connection to host db:5432 refused")
		msg := GetSafeErrorMessage(err)
		assert.Equal(t, "An unexpected error occurred", msg)
		assert.NotContains(t, msg, "db:5432")
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	})
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := errors.New(
		"Key: 'CreateDeckRequest.Name' Error:Field validation for 'Name' failed on the 'required' tag")
	assert.Equal(t, "Invalid Name: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
}
