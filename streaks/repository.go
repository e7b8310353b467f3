package streaks

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rorychadbourne-alt/gratitude-sub000/models"
)

var (
	// ErrNotFound is returned when no streak record exists for the requested week.
	ErrNotFound = errors.New("streaks: record not found")
	// ErrConflict is returned when a versioned save lost a concurrent race.
	ErrConflict = errors.New("streaks: concurrent update conflict")
)

// PersonalRepo persists per-user weekly streak records. Save must be a
// conditional write on the record's version so concurrent day marks cannot
// silently clobber each other.
type PersonalRepo interface {
	Get(ctx context.Context, userID uint, weekStart time.Time) (*models.WeeklyStreak, error)
	GetOrCreate(ctx context.Context, userID uint, weekStart time.Time) (*models.WeeklyStreak, error)
	Save(ctx context.Context, s *models.WeeklyStreak) error
}

// CommunityRepo persists per-circle weekly streak records with the same
// versioned-save contract as PersonalRepo.
type CommunityRepo interface {
	Get(ctx context.Context, circleID uint, weekStart time.Time) (*models.CommunityStreak, error)
	GetOrCreate(ctx context.Context, circleID uint, weekStart time.Time) (*models.CommunityStreak, error)
	Save(ctx context.Context, s *models.CommunityStreak) error
}

// MembershipSource resolves the live member set of a circle. It is consulted
// fresh on every participation check, never cached, so membership churn takes
// effect immediately.
type MembershipSource interface {
	MemberIDs(ctx context.Context, circleID uint) ([]uint, error)
}

// EntrySource reports which of the given users have a qualifying (non-pledge)
// entry dated the given day.
type EntrySource interface {
	ActiveAuthors(ctx context.Context, userIDs []uint, date time.Time) ([]uint, error)
}

// GormStore implements the repository and source interfaces on MySQL.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get looks up the personal streak for (user, week).
func (g *GormStore) Get(ctx context.Context, userID uint, weekStart time.Time) (*models.WeeklyStreak, error) {
	var s models.WeeklyStreak
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND week_start = ?", userID, FormatDate(weekStart)).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetOrCreate returns the personal streak for (user, week), inserting an
// empty record when absent. The insert ignores duplicate-key conflicts so two
// concurrent first marks converge on one row.
func (g *GormStore) GetOrCreate(ctx context.Context, userID uint, weekStart time.Time) (*models.WeeklyStreak, error) {
	if s, err := g.Get(ctx, userID, weekStart); err == nil {
		return s, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	fresh := models.WeeklyStreak{UserID: userID, WeekStart: weekStart}
	if err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fresh).Error; err != nil {
		return nil, err
	}
	return g.Get(ctx, userID, weekStart)
}

// Save writes back a personal streak, conditional on its version.
func (g *GormStore) Save(ctx context.Context, s *models.WeeklyStreak) error {
	res := g.db.WithContext(ctx).
		Model(&models.WeeklyStreak{}).
		Where("id = ? AND version = ?", s.ID, s.Version).
		Updates(map[string]interface{}{
			"completed_days":  s.CompletedDays,
			"rings_completed": s.RingsCompleted,
			"version":         s.Version + 1,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	s.Version++
	return nil
}

// CommunityGormStore is the circle counterpart of GormStore. Separate types
// keep the interfaces small enough for in-memory fakes.
type CommunityGormStore struct {
	db *gorm.DB
}

// NewCommunityGormStore wraps a gorm handle.
func NewCommunityGormStore(db *gorm.DB) *CommunityGormStore {
	return &CommunityGormStore{db: db}
}

// Get looks up the community streak for (circle, week).
func (g *CommunityGormStore) Get(ctx context.Context, circleID uint, weekStart time.Time) (*models.CommunityStreak, error) {
	var s models.CommunityStreak
	err := g.db.WithContext(ctx).
		Where("circle_id = ? AND week_start = ?", circleID, FormatDate(weekStart)).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetOrCreate returns the community streak for (circle, week), inserting an
// empty record with the fixed participation threshold when absent.
func (g *CommunityGormStore) GetOrCreate(ctx context.Context, circleID uint, weekStart time.Time) (*models.CommunityStreak, error) {
	if s, err := g.Get(ctx, circleID, weekStart); err == nil {
		return s, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	fresh := models.CommunityStreak{CircleID: circleID, WeekStart: weekStart, ParticipationThreshold: 1.0}
	if err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fresh).Error; err != nil {
		return nil, err
	}
	return g.Get(ctx, circleID, weekStart)
}

// Save writes back a community streak, conditional on its version.
func (g *CommunityGormStore) Save(ctx context.Context, s *models.CommunityStreak) error {
	res := g.db.WithContext(ctx).
		Model(&models.CommunityStreak{}).
		Where("id = ? AND version = ?", s.ID, s.Version).
		Updates(map[string]interface{}{
			"completed_days":  s.CompletedDays,
			"rings_completed": s.RingsCompleted,
			"version":         s.Version + 1,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	s.Version++
	return nil
}

// GormMembership reads live circle membership.
type GormMembership struct {
	db *gorm.DB
}

// NewGormMembership wraps a gorm handle.
func NewGormMembership(db *gorm.DB) *GormMembership {
	return &GormMembership{db: db}
}

// MemberIDs returns the current member-id set for a circle.
func (g *GormMembership) MemberIDs(ctx context.Context, circleID uint) ([]uint, error) {
	var ids []uint
	err := g.db.WithContext(ctx).
		Model(&models.CircleMember{}).
		Where("circle_id = ?", circleID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// GormEntries reads qualifying entry authorship.
type GormEntries struct {
	db *gorm.DB
}

// NewGormEntries wraps a gorm handle.
func NewGormEntries(db *gorm.DB) *GormEntries {
	return &GormEntries{db: db}
}

// ActiveAuthors returns the distinct user ids among userIDs that have a
// non-pledge entry dated the given day.
func (g *GormEntries) ActiveAuthors(ctx context.Context, userIDs []uint, date time.Time) ([]uint, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := g.db.WithContext(ctx).
		Model(&models.GratitudeEntry{}).
		Distinct("user_id").
		Where("user_id IN ? AND entry_date = ? AND pledge = ?", userIDs, FormatDate(date), false).
		Pluck("user_id", &ids).Error
	return ids, err
}
