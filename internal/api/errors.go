// Package api implements the HTTP handlers for the flashcard service.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/service"
	"github.com/flashdeck/flashdeck-api/internal/service/auth"
	"github.com/flashdeck/flashdeck-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error details to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for the error. Raw error
// strings never reach the client; unknown errors collapse to a generic
// message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found"
	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, store.ErrTagNotFound):
		return "Tag not found"
	case errors.Is(err, store.ErrProfileNotFound):
		return "Profile not found"
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrTagNameExists):
		return "Tag name already in use"
	case errors.Is(err, service.ErrConflict):
		return "Resource conflict"

	case errors.Is(err, domain.ErrValidation):
		// Validation sentinels carry no sensitive data; the specific
		// message tells the client which rule failed.
		return validationMessage(err)
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrDailyLimitNotPositive):
		return "Daily review limit must be positive"
	case errors.Is(err, domain.ErrEasyMinNotPositive):
		return "Easy minimum interval must be positive"
	case errors.Is(err, domain.ErrMaxIntervalNotPositive):
		return "Maximum interval must be positive"
	case errors.Is(err, domain.ErrMaxBelowEasyMin):
		return "Maximum interval must not be below the easy minimum"
	case errors.Is(err, domain.ErrDeckNameEmpty):
		return "Deck name must not be empty"
	case errors.Is(err, domain.ErrCardFrontEmpty):
		return "Card front must not be empty"
	case errors.Is(err, domain.ErrTagNameEmpty):
		return "Tag name must not be empty"
	case errors.Is(err, domain.ErrDisplayNameEmpty):
		return "Display name must not be empty"
	case errors.Is(err, domain.ErrEmailEmpty):
		return "Email must not be empty"
	case errors.Is(err, domain.ErrUnsafeCharacters):
		return "Value contains characters that are not allowed"
	case errors.Is(err, domain.ErrAvatarURLNotAbsolute):
		return "Avatar URL must be absolute"
	default:
		return "Validation error"
	}
}

// SanitizeValidationError turns a validator error into a short user-facing
// message naming the failed field without echoing the submitted value.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()
	if strings.Contains(errMsg, "Field validation") {
		// Format: "Key: 'CreateDeckRequest.Name' Error:Field validation for
		// 'Name' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				if len(fieldParts) >= 5 {
					return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(fieldParts[3]))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}
	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
