package study

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashdeck/flashdeck-api/internal/domain"
)

func cardDueAt(t *testing.T, due time.Time) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(uuid.New(), "front", "back", "", testNow)
	require.NoError(t, err)
	card.State.DueAt = due
	return card
}

func TestSelectDue(t *testing.T) {
	t.Parallel()

	t.Run("orders by due time earliest first", func(t *testing.T) {
		t.Parallel()
		late := cardDueAt(t, testNow.Add(-1*time.Hour))
		early := cardDueAt(t, testNow.Add(-48*time.Hour))
		mid := cardDueAt(t, testNow.Add(-24*time.Hour))

		queue := SelectDue([]*domain.Card{late, early, mid}, testNow, 0)

		require.Len(t, queue, 3)
		assert.Equal(t, early.ID, queue[0].ID)
		assert.Equal(t, mid.ID, queue[1].ID)
		assert.Equal(t, late.ID, queue[2].ID)
	})

	t.Run("excludes cards not yet due", func(t *testing.T) {
		t.Parallel()
		due := cardDueAt(t, testNow)
		future := cardDueAt(t, testNow.Add(time.Nanosecond))

		queue := SelectDue([]*domain.Card{future, due}, testNow, 0)

		require.Len(t, queue, 1)
		assert.Equal(t, due.ID, queue[0].ID, "a card due exactly now is included")
	})

	t.Run("caps at the daily limit", func(t *testing.T) {
		t.Parallel()
		cards := make([]*domain.Card, 5)
		for i := range cards {
			cards[i] = cardDueAt(t, testNow.Add(-time.Duration(i)*time.Hour))
		}

		queue := SelectDue(cards, testNow, 2)

		require.Len(t, queue, 2)
		assert.Equal(t, cards[4].ID, queue[0].ID, "cap keeps the most overdue cards")
		assert.Equal(t, cards[3].ID, queue[1].ID)
	})

	t.Run("limit of zero or less means unlimited", func(t *testing.T) {
		t.Parallel()
		cards := []*domain.Card{
			cardDueAt(t, testNow.Add(-time.Hour)),
			cardDueAt(t, testNow.Add(-2*time.Hour)),
		}

		assert.Len(t, SelectDue(cards, testNow, 0), 2)
		assert.Len(t, SelectDue(cards, testNow, -1), 2)
	})

	t.Run("ties keep input order", func(t *testing.T) {
		t.Parallel()
		due := testNow.Add(-time.Hour)
		a := cardDueAt(t, due)
		b := cardDueAt(t, due)
		c := cardDueAt(t, due)

		queue := SelectDue([]*domain.Card{a, b, c}, testNow, 0)

		require.Len(t, queue, 3)
		assert.Equal(t, a.ID, queue[0].ID)
		assert.Equal(t, b.ID, queue[1].ID)
		assert.Equal(t, c.ID, queue[2].ID)
	})

	t.Run("does not mutate the input slice", func(t *testing.T) {
		t.Parallel()
		late := cardDueAt(t, testNow.Add(-time.Hour))
		early := cardDueAt(t, testNow.Add(-2*time.Hour))
		input := []*domain.Card{late, early}

		SelectDue(input, testNow, 0)

		assert.Equal(t, late.ID, input[0].ID)
		assert.Equal(t, early.ID, input[1].ID)
	})
}

func TestShouldRepeatInSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		rating domain.Rating
		repeat bool
		want   bool
	}{
		{"again repeats when enabled", domain.RatingAgain, true, true},
		{"hard repeats when enabled", domain.RatingHard, true, true},
		{"medium never repeats", domain.RatingMedium, true, false},
		{"easy never repeats", domain.RatingEasy, true, false},
		{"again does not repeat when disabled", domain.RatingAgain, false, false},
		{"hard does not repeat when disabled", domain.RatingHard, false, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			settings := domain.DefaultStudySettings()
			settings.RepeatInSession = tc.repeat
			assert.Equal(t, tc.want, ShouldRepeatInSession(tc.rating, settings))
		})
	}
}
