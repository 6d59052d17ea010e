package study

import (
	"math"
	"time"

	"github.com/flashdeck/flashdeck-api/internal/domain"
)

// quality maps a rating onto the SM-2 quality scale. Unknown ratings degrade
// to Hard rather than failing; the scheduler must never crash on bad input.
func quality(rating domain.Rating) int {
	switch rating {
	case domain.RatingAgain:
		return 1
	case domain.RatingHard:
		return 3
	case domain.RatingMedium:
		return 4
	case domain.RatingEasy:
		return 5
	default:
		return 3
	}
}

// ApplyRating advances a card's scheduling state after a review, mutating
// state in place. It implements a graded SM-2 variant:
//
//   - A failing grade (quality < 3) records a lapse, zeroes the streak and
//     interval, knocks 0.2 off the ease factor and makes the card due now.
//   - A passing grade grows the interval: 1 day on the first pass, 3 on the
//     second, then round(interval * ease) with a 1-day floor.
//   - Easy reviews never land below the deck's easy minimum interval, and no
//     interval exceeds the configured maximum. A maximum configured below the
//     easy minimum is treated as equal to it; the floor wins.
//   - Ease then shifts by the standard SM-2 delta for the quality and is
//     floored at 1.3.
//
// Settings are required; use domain.DefaultStudySettings for the stock
// behavior. The caller is responsible for persisting the updated state.
func ApplyRating(state *domain.CardState, rating domain.Rating, now time.Time, settings domain.StudySettings) {
	easyMin := settings.EasyMinIntervalDays
	if easyMin < 1 {
		easyMin = 1
	}
	maxInterval := settings.MaxIntervalDays
	if maxInterval < easyMin {
		maxInterval = easyMin
	}

	q := quality(rating)

	if q < 3 {
		state.Lapses++
		state.Streak = 0
		state.IntervalDays = 0
		state.EaseFactor = math.Max(1.3, state.EaseFactor-0.2)
		state.DueAt = now
		return
	}

	state.Streak++
	switch {
	case state.Streak == 1:
		state.IntervalDays = 1
	case state.Streak == 2:
		state.IntervalDays = 3
	default:
		next := int(math.Round(float64(state.IntervalDays) * state.EaseFactor))
		if next < 1 {
			next = 1
		}
		state.IntervalDays = next
	}

	if rating == domain.RatingEasy && state.IntervalDays < easyMin {
		state.IntervalDays = easyMin
	}
	if state.IntervalDays > maxInterval {
		state.IntervalDays = maxInterval
	}

	delta := 0.1 - float64(5-q)*(0.08+float64(5-q)*0.02)
	state.EaseFactor = math.Max(1.3, state.EaseFactor+delta)
	state.DueAt = now.AddDate(0, 0, state.IntervalDays)
}
