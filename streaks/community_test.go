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

const circleID = uint(7)

func newCommunityFixture(memberIDs ...uint) (*streaks.CommunityTracker, *fakeMembers, *fakeEntries) {
	members := &fakeMembers{members: map[uint][]uint{circleID: memberIDs}}
	entries := &fakeEntries{byDate: map[string][]uint{}}
	tracker := streaks.NewCommunityTracker(newFakeCommunityRepo(), members, entries)
	return tracker, members, entries
}

func TestCommunityDayCompletesOnlyWithFullParticipation(t *testing.T) {
	tracker, _, entries := newCommunityFixture(1, 2, 3)
	ctx := context.Background()

	entries.post(1, tuesday)
	entries.post(2, tuesday)

	s, err := tracker.Update(ctx, circleID, tuesday)
	require.NoError(t, err)
	assert.Equal(t, 0, s.RingsCompleted, "2 of 3 members is not enough")

	entries.post(3, tuesday)
	s, err = tracker.Update(ctx, circleID, tuesday)
	require.NoError(t, err)
	assert.Equal(t, 1, s.RingsCompleted)
	assert.Equal(t, []int{2}, models.ParseDays(s.CompletedDays))
}

func TestCommunityZeroMemberCircleNeverCompletes(t *testing.T) {
	tracker, _, _ := newCommunityFixture()
	ctx := context.Background()

	p, err := tracker.ComputeParticipation(ctx, circleID, tuesday)
	require.NoError(t, err)
	assert.Equal(t, streaks.Participation{}, p)

	s, err := tracker.Update(ctx, circleID, tuesday)
	require.NoError(t, err)
	assert.Equal(t, 0, s.RingsCompleted)
	assert.Empty(t, models.ParseDays(s.CompletedDays))
}

func TestCommunityNewMemberDoesNotUnmarkEarlierDays(t *testing.T) {
	tracker, members, entries := newCommunityFixture(1, 2)
	ctx := context.Background()

	entries.post(1, tuesday)
	entries.post(2, tuesday)
	s, err := tracker.Update(ctx, circleID, tuesday)
	require.NoError(t, err)
	require.Equal(t, 1, s.RingsCompleted)

	// A third member joins after Tuesday was earned.
	members.members[circleID] = []uint{1, 2, 3}

	s, err = tracker.Update(ctx, circleID, tuesday)
	require.NoError(t, err)
	assert.Equal(t, 1, s.RingsCompleted, "already-earned day stays marked")

	// But the new member immediately raises Wednesday's bar.
	wednesday := tuesday.AddDate(0, 0, 1)
	entries.post(1, wednesday)
	entries.post(2, wednesday)
	s, err = tracker.Update(ctx, circleID, wednesday)
	require.NoError(t, err)
	assert.Equal(t, 1, s.RingsCompleted, "wednesday needs all three members")

	entries.post(3, wednesday)
	s, err = tracker.Update(ctx, circleID, wednesday)
	require.NoError(t, err)
	assert.Equal(t, 2, s.RingsCompleted)
}

func TestCommunityDayEarnedLaterSameDay(t *testing.T) {
	tracker, _, entries := newCommunityFixture(1, 2)
	ctx := context.Background()

	entries.post(1, tuesday)
	s, err := tracker.Update(ctx, circleID, tuesday)
	require.NoError(t, err)
	assert.Equal(t, 0, s.RingsCompleted)

	// Second member posts before midnight; re-evaluation earns the day.
	entries.post(2, tuesday.Add(8*time.Hour))
	s, err = tracker.Update(ctx, circleID, tuesday.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, s.RingsCompleted)
}

func TestCommunityComputeParticipationRate(t *testing.T) {
	tracker, _, entries := newCommunityFixture(1, 2, 3, 4)
	ctx := context.Background()

	entries.post(1, tuesday)
	entries.post(3, tuesday)

	p, err := tracker.ComputeParticipation(ctx, circleID, tuesday)
	require.NoError(t, err)
	assert.Equal(t, 2, p.ActiveMembers)
	assert.Equal(t, 4, p.TotalMembers)
	assert.InDelta(t, 0.5, p.Rate, 1e-9)
}

func TestCommunityCurrentReturnsZeroValueForEmptyWeek(t *testing.T) {
	tracker, _, _ := newCommunityFixture(1)

	s, err := tracker.Current(context.Background(), circleID, tuesday)
	require.NoError(t, err)
	assert.Equal(t, circleID, s.CircleID)
	assert.Equal(t, 0, s.RingsCompleted)
	assert.Equal(t, 1.0, s.ParticipationThreshold)
}

func TestCommunityThresholdFieldIsStoredButNotConsulted(t *testing.T) {
	repo := newFakeCommunityRepo()
	members := &fakeMembers{members: map[uint][]uint{circleID: {1, 2}}}
	entries := &fakeEntries{byDate: map[string][]uint{}}
	tracker := streaks.NewCommunityTracker(repo, members, entries)
	ctx := context.Background()

	// Lower the stored threshold; completion must still demand everyone.
	_, err := repo.GetOrCreate(ctx, circleID, streaks.WeekStart(tuesday))
	require.NoError(t, err)
	repo.rows[communityKey(circleID, streaks.WeekStart(tuesday))].ParticipationThreshold = 0.5

	entries.post(1, tuesday)
	got, err := tracker.Update(ctx, circleID, tuesday)
	require.NoError(t, err)
	assert.Equal(t, 0, got.RingsCompleted, "half participation never completes a day")
}
