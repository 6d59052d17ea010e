package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of all domain validation failures. Handlers map
// anything wrapping it to a 400 response.
var ErrValidation = errors.New("validation failed")

// StudySettings validation errors. The validator reports the first violated
// rule only.
var (
	ErrDailyLimitNotPositive  = fmt.Errorf("%w: daily review limit must be positive", ErrValidation)
	ErrEasyMinNotPositive     = fmt.Errorf("%w: easy minimum interval must be positive", ErrValidation)
	ErrMaxIntervalNotPositive = fmt.Errorf("%w: max interval must be positive", ErrValidation)
	ErrMaxBelowEasyMin        = fmt.Errorf(
		"%w: max interval must be greater than or equal to the easy minimum interval",
		ErrValidation,
	)
)

// Entity validation errors.
var (
	ErrDeckNameEmpty       = fmt.Errorf("%w: deck name cannot be empty", ErrValidation)
	ErrCardFrontEmpty      = fmt.Errorf("%w: card front cannot be empty", ErrValidation)
	ErrCardDeckIDEmpty     = fmt.Errorf("%w: card deck ID cannot be empty", ErrValidation)
	ErrTagNameEmpty        = fmt.Errorf("%w: tag name cannot be empty", ErrValidation)
	ErrDisplayNameEmpty    = fmt.Errorf("%w: display name cannot be empty", ErrValidation)
	ErrEmailEmpty          = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrUnsafeCharacters    = fmt.Errorf("%w: input contains unsupported characters", ErrValidation)
	ErrAvatarURLNotAbsolute = fmt.Errorf("%w: avatar URL must be an absolute URL", ErrValidation)
)
