package push_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rorychadbourne-alt/gratitude-sub000/push"
)

func TestStoreSetGetRoundTrip(t *testing.T) {
	store := push.NewStore()

	saved := store.Set(1, push.Subscription{
		Endpoint:     "https://push.example.com/abc",
		P256dh:       "p256",
		Auth:         "auth",
		ReminderTime: "08:30",
		ReminderDays: allDays(),
		Timezone:     "Europe/London",
		Active:       true,
	})
	assert.Equal(t, uint(1), saved.UserID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "https://push.example.com/abc", got.Endpoint)
	assert.Equal(t, "08:30", got.ReminderTime)
	assert.Equal(t, 1, store.Len())
}

func TestStoreSetPreservesCreatedAtOnReOptIn(t *testing.T) {
	store := push.NewStore()
	first := store.Set(1, push.Subscription{Endpoint: "a", Active: true})
	second := store.Set(1, push.Subscription{Endpoint: "b", Active: true})

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	got, _ := store.Get(1)
	assert.Equal(t, "b", got.Endpoint, "last write wins")
	assert.Equal(t, 1, store.Len())
}

func TestStoreDeleteMissingKeyReturnsFalse(t *testing.T) {
	store := push.NewStore()
	assert.False(t, store.Delete(99))

	store.Set(1, push.Subscription{Endpoint: "a"})
	assert.True(t, store.Delete(1))
	_, ok := store.Get(1)
	assert.False(t, ok)
}

func TestStoreWhereFiltersInactive(t *testing.T) {
	store := push.NewStore()
	store.Set(1, push.Subscription{Endpoint: "a", Active: true})
	store.Set(2, push.Subscription{Endpoint: "b", Active: true})
	store.Set(3, push.Subscription{Endpoint: "c", Active: false})

	active := store.Where(func(s push.Subscription) bool { return s.Active })
	assert.Len(t, active, 2)
	for _, s := range active {
		assert.NotEqual(t, uint(3), s.UserID)
	}
}

func TestStoreDeactivate(t *testing.T) {
	store := push.NewStore()
	store.Set(1, push.Subscription{Endpoint: "a", Active: true})

	store.Deactivate(1)
	got, ok := store.Get(1)
	require.True(t, ok, "deactivation keeps the record")
	assert.False(t, got.Active)

	// Deactivating an unknown user is a no-op.
	store.Deactivate(99)
	assert.Equal(t, 1, store.Len())
}
