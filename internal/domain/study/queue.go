package study

import (
	"sort"
	"time"

	"github.com/flashdeck/flashdeck-api/internal/domain"
)

// SelectDue picks the cards due at the given instant, earliest first, capped
// at dailyLimit. A limit of zero or less means unlimited. Ties on due time
// keep the input order. The input is never mutated.
func SelectDue(cards []*domain.Card, now time.Time, dailyLimit int) []*domain.Card {
	due := make([]*domain.Card, 0, len(cards))
	for _, card := range cards {
		if card.IsDue(now) {
			due = append(due, card)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].State.DueAt.Before(due[j].State.DueAt)
	})

	if dailyLimit > 0 && len(due) > dailyLimit {
		due = due[:dailyLimit]
	}
	return due
}
