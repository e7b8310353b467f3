package streaks_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rorychadbourne-alt/gratitude-sub000/models"
	"github.com/rorychadbourne-alt/gratitude-sub000/streaks"
)

// fakePersonalRepo enforces the same versioned-save contract as the gorm
// implementation so tracker behavior under write races is covered.
type fakePersonalRepo struct {
	mu     sync.Mutex
	rows   map[string]*models.WeeklyStreak
	nextID uint
}

func newFakePersonalRepo() *fakePersonalRepo {
	return &fakePersonalRepo{rows: map[string]*models.WeeklyStreak{}}
}

func personalKey(userID uint, week time.Time) string {
	return fmt.Sprintf("%d|%s", userID, streaks.FormatDate(week))
}

func (f *fakePersonalRepo) Get(_ context.Context, userID uint, week time.Time) (*models.WeeklyStreak, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[personalKey(userID, week)]
	if !ok {
		return nil, streaks.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakePersonalRepo) GetOrCreate(ctx context.Context, userID uint, week time.Time) (*models.WeeklyStreak, error) {
	f.mu.Lock()
	key := personalKey(userID, week)
	if _, ok := f.rows[key]; !ok {
		f.nextID++
		f.rows[key] = &models.WeeklyStreak{ID: f.nextID, UserID: userID, WeekStart: week}
	}
	f.mu.Unlock()
	return f.Get(ctx, userID, week)
}

func (f *fakePersonalRepo) Save(_ context.Context, s *models.WeeklyStreak) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID != s.ID {
			continue
		}
		if row.Version != s.Version {
			return streaks.ErrConflict
		}
		row.CompletedDays = s.CompletedDays
		row.RingsCompleted = s.RingsCompleted
		row.Version++
		s.Version++
		return nil
	}
	return streaks.ErrNotFound
}

// conflictOnceRepo wraps a PersonalRepo and rejects the first save, as a
// lost CAS race would.
type conflictOnceRepo struct {
	streaks.PersonalRepo
	conflicted bool
}

func (c *conflictOnceRepo) Save(ctx context.Context, s *models.WeeklyStreak) error {
	if !c.conflicted {
		c.conflicted = true
		return streaks.ErrConflict
	}
	return c.PersonalRepo.Save(ctx, s)
}

type fakeCommunityRepo struct {
	mu     sync.Mutex
	rows   map[string]*models.CommunityStreak
	nextID uint
}

func newFakeCommunityRepo() *fakeCommunityRepo {
	return &fakeCommunityRepo{rows: map[string]*models.CommunityStreak{}}
}

func communityKey(circleID uint, week time.Time) string {
	return fmt.Sprintf("%d|%s", circleID, streaks.FormatDate(week))
}

func (f *fakeCommunityRepo) Get(_ context.Context, circleID uint, week time.Time) (*models.CommunityStreak, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[communityKey(circleID, week)]
	if !ok {
		return nil, streaks.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeCommunityRepo) GetOrCreate(ctx context.Context, circleID uint, week time.Time) (*models.CommunityStreak, error) {
	f.mu.Lock()
	key := communityKey(circleID, week)
	if _, ok := f.rows[key]; !ok {
		f.nextID++
		f.rows[key] = &models.CommunityStreak{ID: f.nextID, CircleID: circleID, WeekStart: week, ParticipationThreshold: 1.0}
	}
	f.mu.Unlock()
	return f.Get(ctx, circleID, week)
}

func (f *fakeCommunityRepo) Save(_ context.Context, s *models.CommunityStreak) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID != s.ID {
			continue
		}
		if row.Version != s.Version {
			return streaks.ErrConflict
		}
		row.CompletedDays = s.CompletedDays
		row.RingsCompleted = s.RingsCompleted
		row.Version++
		s.Version++
		return nil
	}
	return streaks.ErrNotFound
}

// fakeMembers returns a mutable member set per circle.
type fakeMembers struct {
	members map[uint][]uint
}

func (f *fakeMembers) MemberIDs(_ context.Context, circleID uint) ([]uint, error) {
	return f.members[circleID], nil
}

// fakeEntries records which users posted a qualifying entry on which day.
type fakeEntries struct {
	byDate map[string][]uint
}

func (f *fakeEntries) post(userID uint, date time.Time) {
	key := streaks.FormatDate(date)
	f.byDate[key] = append(f.byDate[key], userID)
}

func (f *fakeEntries) ActiveAuthors(_ context.Context, userIDs []uint, date time.Time) ([]uint, error) {
	posted := map[uint]bool{}
	for _, id := range f.byDate[streaks.FormatDate(date)] {
		posted[id] = true
	}
	var out []uint
	for _, id := range userIDs {
		if posted[id] {
			out = append(out, id)
		}
	}
	return out, nil
}
