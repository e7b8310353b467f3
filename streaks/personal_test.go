package streaks_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rorychadbourne-alt/gratitude-sub000/models"
	"github.com/rorychadbourne-alt/gratitude-sub000/streaks"
)

var tuesday = time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC)

func TestPersonalUpdateMarksDay(t *testing.T) {
	tracker := streaks.NewPersonalTracker(newFakePersonalRepo())

	s, err := tracker.Update(context.Background(), 1, tuesday)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, models.ParseDays(s.CompletedDays))
	assert.Equal(t, 1, s.RingsCompleted)
	assert.Equal(t, "2026-08-23", streaks.FormatDate(s.WeekStart))
}

func TestPersonalUpdateIdempotentSameDay(t *testing.T) {
	tracker := streaks.NewPersonalTracker(newFakePersonalRepo())
	ctx := context.Background()

	first, err := tracker.Update(ctx, 1, tuesday)
	require.NoError(t, err)

	// Second entry later the same day must not double-count.
	second, err := tracker.Update(ctx, 1, tuesday.Add(6*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first.RingsCompleted, second.RingsCompleted)
	assert.Equal(t, first.CompletedDays, second.CompletedDays)
}

func TestPersonalRingsCapAtFive(t *testing.T) {
	tracker := streaks.NewPersonalTracker(newFakePersonalRepo())
	ctx := context.Background()

	var s *models.WeeklyStreak
	var err error
	for i := 0; i < 7; i++ {
		day := streaks.WeekStart(tuesday).AddDate(0, 0, i).Add(9 * time.Hour)
		s, err = tracker.Update(ctx, 1, day)
		require.NoError(t, err)

		expected := i + 1
		if expected > models.MaxRings {
			expected = models.MaxRings
		}
		assert.Equal(t, expected, s.RingsCompleted)
	}
	assert.Len(t, models.ParseDays(s.CompletedDays), 7)
	assert.Equal(t, models.MaxRings, s.RingsCompleted)
}

func TestPersonalCompletedDaysNeverShrink(t *testing.T) {
	tracker := streaks.NewPersonalTracker(newFakePersonalRepo())
	ctx := context.Background()

	_, err := tracker.Update(ctx, 1, tuesday)
	require.NoError(t, err)
	s, err := tracker.Update(ctx, 1, tuesday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, models.ParseDays(s.CompletedDays))

	// Re-marking an earlier day leaves the set unchanged.
	s, err = tracker.Update(ctx, 1, tuesday)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, models.ParseDays(s.CompletedDays))
}

func TestPersonalCurrentReturnsZeroValueForEmptyWeek(t *testing.T) {
	tracker := streaks.NewPersonalTracker(newFakePersonalRepo())

	s, err := tracker.Current(context.Background(), 42, tuesday)
	require.NoError(t, err)
	assert.Equal(t, uint(42), s.UserID)
	assert.Empty(t, models.ParseDays(s.CompletedDays))
	assert.Equal(t, 0, s.RingsCompleted)
}

func TestPersonalUpdateRetriesLostRace(t *testing.T) {
	repo := &conflictOnceRepo{PersonalRepo: newFakePersonalRepo()}
	tracker := streaks.NewPersonalTracker(repo)

	s, err := tracker.Update(context.Background(), 1, tuesday)
	require.NoError(t, err)
	assert.True(t, repo.conflicted)
	assert.Equal(t, 1, s.RingsCompleted)
}

func TestPersonalWeeksAreIndependent(t *testing.T) {
	tracker := streaks.NewPersonalTracker(newFakePersonalRepo())
	ctx := context.Background()

	_, err := tracker.Update(ctx, 1, tuesday)
	require.NoError(t, err)

	nextWeek := tuesday.AddDate(0, 0, 7)
	s, err := tracker.Update(ctx, 1, nextWeek)
	require.NoError(t, err)
	assert.Equal(t, 1, s.RingsCompleted)
	assert.Equal(t, "2026-08-30", streaks.FormatDate(s.WeekStart))
}
