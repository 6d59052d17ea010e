package study

import "github.com/flashdeck/flashdeck-api/internal/domain"

// ShouldRepeatInSession decides whether a just-answered card goes back to the
// end of the current in-memory session queue. This is a session-local effect
// only; nothing is persisted. Repetition applies to failed and struggling
// answers (Again, Hard) and only when the deck opts in.
func ShouldRepeatInSession(rating domain.Rating, settings domain.StudySettings) bool {
	if !settings.RepeatInSession {
		return false
	}
	return rating == domain.RatingAgain || rating == domain.RatingHard
}
