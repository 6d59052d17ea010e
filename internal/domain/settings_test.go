package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultStudySettings(t *testing.T) {
	t.Parallel()

	settings := DefaultStudySettings()
	assert.Equal(t, 50, settings.DailyReviewLimit)
	assert.Equal(t, 3, settings.EasyMinIntervalDays)
	assert.Equal(t, 180, settings.MaxIntervalDays)
	assert.True(t, settings.RepeatInSession)
	assert.NoError(t, settings.Validate())
}

func TestStudySettingsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*StudySettings)
		wantErr error
	}{
		{
			name:    "zero daily limit",
			mutate:  func(s *StudySettings) { s.DailyReviewLimit = 0 },
			wantErr: ErrDailyLimitNotPositive,
		},
		{
			name:    "negative daily limit",
			mutate:  func(s *StudySettings) { s.DailyReviewLimit = -5 },
			wantErr: ErrDailyLimitNotPositive,
		},
		{
			name:    "zero easy minimum",
			mutate:  func(s *StudySettings) { s.EasyMinIntervalDays = 0 },
			wantErr: ErrEasyMinNotPositive,
		},
		{
			name:    "zero max interval",
			mutate:  func(s *StudySettings) { s.MaxIntervalDays = 0 },
			wantErr: ErrMaxIntervalNotPositive,
		},
		{
			name: "max below easy minimum",
			mutate: func(s *StudySettings) {
				s.EasyMinIntervalDays = 10
				s.MaxIntervalDays = 5
			},
			wantErr: ErrMaxBelowEasyMin,
		},
		{
			name: "first failing rule wins",
			mutate: func(s *StudySettings) {
				s.DailyReviewLimit = 0
				s.EasyMinIntervalDays = 0
				s.MaxIntervalDays = 0
			},
			wantErr: ErrDailyLimitNotPositive,
		},
		{
			name:   "max equal to easy minimum is valid",
			mutate: func(s *StudySettings) { s.EasyMinIntervalDays = 30; s.MaxIntervalDays = 30 },
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			settings := DefaultStudySettings()
			tc.mutate(&settings)

			err := settings.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, ErrValidation, "settings errors wrap the validation root")
		})
	}
}
