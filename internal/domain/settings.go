package domain

// StudySettings are the per-deck scheduling parameters. They travel with the
// deck and are passed explicitly into every scheduling call; there is no
// implicit global default.
type StudySettings struct {
	// DailyReviewLimit caps the number of due cards a study queue returns.
	// Values <= 0 are rejected by Validate; SelectDue treats <= 0 as
	// unlimited for callers that bypass validation deliberately.
	DailyReviewLimit int `json:"daily_review_limit"`

	// EasyMinIntervalDays is the floor applied to the interval when a card
	// is rated Easy.
	EasyMinIntervalDays int `json:"easy_min_interval_days"`

	// MaxIntervalDays is the ceiling on any computed interval. If configured
	// below EasyMinIntervalDays the effective ceiling is the easy floor.
	MaxIntervalDays int `json:"max_interval_days"`

	// RepeatInSession controls whether failed cards re-enter the current
	// in-memory study session.
	RepeatInSession bool `json:"repeat_in_session"`
}

// DefaultStudySettings returns the settings a new deck starts with.
func DefaultStudySettings() StudySettings {
	return StudySettings{
		DailyReviewLimit:    50,
		EasyMinIntervalDays: 3,
		MaxIntervalDays:     180,
		RepeatInSession:     true,
	}
}

// Validate checks the settings invariants. The first violated rule wins.
func (s StudySettings) Validate() error {
	if s.DailyReviewLimit <= 0 {
		return ErrDailyLimitNotPositive
	}
	if s.EasyMinIntervalDays <= 0 {
		return ErrEasyMinNotPositive
	}
	if s.MaxIntervalDays <= 0 {
		return ErrMaxIntervalNotPositive
	}
	if s.MaxIntervalDays < s.EasyMinIntervalDays {
		return ErrMaxBelowEasyMin
	}
	return nil
}
