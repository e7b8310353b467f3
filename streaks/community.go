package streaks

import (
	"context"
	"errors"
	"time"

	"github.com/rorychadbourne-alt/gratitude-sub000/models"
)

// Participation summarizes how much of a circle posted on a given day.
type Participation struct {
	ActiveMembers int     `json:"active_members"`
	TotalMembers  int     `json:"total_members"`
	Rate          float64 `json:"rate"`
}

// CommunityTracker maintains per-circle weekly streak rings. A day completes
// only under strict full-group participation: every current member must have
// a qualifying entry dated that day. Membership is read live on every
// evaluation; a member who joins mid-week changes today's denominator
// immediately but never retroactively unmarks earlier days.
type CommunityTracker struct {
	repo    CommunityRepo
	members MembershipSource
	entries EntrySource
}

// NewCommunityTracker creates a tracker over the given repository and sources.
func NewCommunityTracker(repo CommunityRepo, members MembershipSource, entries EntrySource) *CommunityTracker {
	return &CommunityTracker{repo: repo, members: members, entries: entries}
}

// ComputeParticipation reports the circle's posting rate for a day. An empty
// circle yields {0, 0, 0} so a zero denominator can never divide.
func (t *CommunityTracker) ComputeParticipation(ctx context.Context, circleID uint, date time.Time) (Participation, error) {
	memberIDs, err := t.members.MemberIDs(ctx, circleID)
	if err != nil {
		return Participation{}, err
	}
	if len(memberIDs) == 0 {
		return Participation{}, nil
	}

	active, err := t.entries.ActiveAuthors(ctx, memberIDs, date)
	if err != nil {
		return Participation{}, err
	}

	p := Participation{
		ActiveMembers: len(active),
		TotalMembers:  len(memberIDs),
	}
	p.Rate = float64(p.ActiveMembers) / float64(p.TotalMembers)
	return p, nil
}

// Update re-evaluates the circle's day for date and marks it complete when
// every current member has posted. Callers invoke this on every new shared
// entry; a day not yet earned may still be earned later the same day.
func (t *CommunityTracker) Update(ctx context.Context, circleID uint, date time.Time) (*models.CommunityStreak, error) {
	week := WeekStart(date)
	day := DayIndex(date)

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		s, err := t.repo.GetOrCreate(ctx, circleID, week)
		if err != nil {
			return nil, err
		}

		if models.HasDay(s.CompletedDays, day) {
			return s, nil
		}

		p, err := t.ComputeParticipation(ctx, circleID, date)
		if err != nil {
			return nil, err
		}
		// Strict full participation, not the stored threshold fraction.
		if p.TotalMembers == 0 || p.ActiveMembers != p.TotalMembers {
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

// Current returns the circle's streak for the week containing now, or a
// synthetic zero-value record when the circle has no activity yet.
func (t *CommunityTracker) Current(ctx context.Context, circleID uint, now time.Time) (*models.CommunityStreak, error) {
	week := WeekStart(now)
	s, err := t.repo.Get(ctx, circleID, week)
	if errors.Is(err, ErrNotFound) {
		return &models.CommunityStreak{CircleID: circleID, WeekStart: week, ParticipationThreshold: 1.0}, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
