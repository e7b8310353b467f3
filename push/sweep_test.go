package push_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rorychadbourne-alt/gratitude-sub000/push"
)

// fakeSender records deliveries and can fail specific users.
type fakeSender struct {
	sent     []uint
	failWith map[uint]error
}

func (f *fakeSender) Send(_ context.Context, sub push.Subscription, _ push.Payload) error {
	if err, ok := f.failWith[sub.UserID]; ok {
		return err
	}
	f.sent = append(f.sent, sub.UserID)
	return nil
}

func TestSweepSendsDueSubscriptions(t *testing.T) {
	store := push.NewStore()
	due := utcSub("19:00")
	store.Set(1, due)

	notDue := utcSub("08:00")
	store.Set(2, notDue)

	sender := &fakeSender{}
	summary := push.Sweep(context.Background(), store, sender, tuesdayAt(19, 5), nil)

	assert.Equal(t, push.Summary{Sent: 1, Skipped: 1, Total: 2}, summary)
	assert.Equal(t, []uint{1}, sender.sent)
}

func TestSweepExcludesInactiveSubscriptions(t *testing.T) {
	store := push.NewStore()
	store.Set(1, utcSub("19:00"))

	inactive := utcSub("19:00")
	inactive.Active = false
	store.Set(2, inactive)

	sender := &fakeSender{}
	summary := push.Sweep(context.Background(), store, sender, tuesdayAt(19, 0), nil)

	assert.Equal(t, 1, summary.Total, "inactive subscriptions are not even counted")
	assert.Equal(t, 1, summary.Sent)
}

func TestSweepDeactivatesGoneEndpoints(t *testing.T) {
	store := push.NewStore()
	store.Set(1, utcSub("19:00"))
	store.Set(2, utcSub("19:00"))

	sender := &fakeSender{failWith: map[uint]error{2: push.ErrGone}}
	summary := push.Sweep(context.Background(), store, sender, tuesdayAt(19, 0), nil)

	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Failed)

	gone, ok := store.Get(2)
	require.True(t, ok)
	assert.False(t, gone.Active, "gone endpoint is deactivated, not deleted")

	// The healthy subscription is untouched.
	fine, _ := store.Get(1)
	assert.True(t, fine.Active)
}

func TestSweepTransientFailureKeepsSubscriptionActive(t *testing.T) {
	store := push.NewStore()
	store.Set(1, utcSub("19:00"))

	sender := &fakeSender{failWith: map[uint]error{1: errors.New("push: unexpected status 500")}}
	summary := push.Sweep(context.Background(), store, sender, tuesdayAt(19, 0), nil)

	assert.Equal(t, 1, summary.Failed)
	got, _ := store.Get(1)
	assert.True(t, got.Active, "transient failure waits for the next cycle")
}

func TestSweepEmptyStore(t *testing.T) {
	summary := push.Sweep(context.Background(), push.NewStore(), &fakeSender{}, tuesdayAt(19, 0), nil)
	assert.Equal(t, push.Summary{}, summary)
}

func TestReminderPayload(t *testing.T) {
	now := tuesdayAt(19, 0)
	p := push.ReminderPayload(now)
	assert.Equal(t, "daily-reminder", p.Tag)
	assert.Equal(t, now.UnixMilli(), p.Timestamp)
	assert.NotEmpty(t, p.Title)
	assert.NotEmpty(t, p.Body)
}
