package streaks

import (
	"context"
	"errors"
	"time"

	"github.com/rorychadbourne-alt/gratitude-sub000/models"
)

// maxUpdateAttempts bounds the versioned-save retry loop. Conflicts only
// happen when two writers race on the same (key, week) row, so one retry is
// almost always enough.
const maxUpdateAttempts = 3

// PersonalTracker maintains per-user weekly streak rings.
type PersonalTracker struct {
	repo PersonalRepo
}

// NewPersonalTracker creates a tracker over the given repository.
func NewPersonalTracker(repo PersonalRepo) *PersonalTracker {
	return &PersonalTracker{repo: repo}
}

// Update marks the day of completionDate complete for the user's current
// week. Marking an already-complete day is a no-op, so multiple entries on
// one day never double-count. Lost version races are retried.
func (t *PersonalTracker) Update(ctx context.Context, userID uint, completionDate time.Time) (*models.WeeklyStreak, error) {
	week := WeekStart(completionDate)
	day := DayIndex(completionDate)

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		s, err := t.repo.GetOrCreate(ctx, userID, week)
		if err != nil {
			return nil, err
		}

		if models.HasDay(s.CompletedDays, day) {
			return s, nil
		}

		days := append(models.ParseDays(s.CompletedDays), day)
		s.CompletedDays = models.EncodeDays(days)
		s.RingsCompleted = models.Rings(s.CompletedDays)

		err = t.repo.Save(ctx, s)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, ErrConflict
}

// Current returns the streak record for the week containing now. A week with
// no activity is a valid state: absent records yield a synthetic zero-value
// streak rather than an error.
func (t *PersonalTracker) Current(ctx context.Context, userID uint, now time.Time) (*models.WeeklyStreak, error) {
	week := WeekStart(now)
	s, err := t.repo.Get(ctx, userID, week)
	if errors.Is(err, ErrNotFound) {
		return &models.WeeklyStreak{UserID: userID, WeekStart: week, CompletedDays: "", RingsCompleted: 0}, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
