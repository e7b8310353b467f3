package push

import (
	"sync"
	"time"
)

// Subscription is one user's Web Push registration plus reminder settings.
// ReminderDays is keyed by three-letter weekday name ("Sun".."Sat").
type Subscription struct {
	UserID       uint            `json:"user_id"`
	Endpoint     string          `json:"endpoint"`
	P256dh       string          `json:"p256dh"`
	Auth         string          `json:"auth"`
	ReminderTime string          `json:"reminder_time"`
	ReminderDays map[string]bool `json:"reminder_days"`
	Timezone     string          `json:"timezone"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Store is a process-local subscription registry keyed by user id.
// Writes are last-write-wins and nothing survives a restart; this is a stated
// placeholder for a persistent store, and callers must not assume durability.
type Store struct {
	mu   sync.RWMutex
	subs map[uint]Subscription
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{subs: map[uint]Subscription{}}
}

// Set upserts a subscription. CreatedAt is preserved across re-opt-ins.
func (s *Store) Set(userID uint, sub Subscription) Subscription {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	sub.UserID = userID
	sub.UpdatedAt = now
	if existing, ok := s.subs[userID]; ok && !existing.CreatedAt.IsZero() {
		sub.CreatedAt = existing.CreatedAt
	} else if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	s.subs[userID] = sub
	return sub
}

// Get returns the subscription for a user.
func (s *Store) Get(userID uint) (Subscription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[userID]
	return sub, ok
}

// All returns a snapshot of every subscription.
func (s *Store) All() []Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	return out
}

// Where returns the subscriptions matching pred.
func (s *Store) Where(pred func(Subscription) bool) []Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Subscription{}
	for _, sub := range s.subs {
		if pred(sub) {
			out = append(out, sub)
		}
	}
	return out
}

// Delete removes a subscription, reporting whether one existed.
func (s *Store) Delete(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subs[userID]
	delete(s.subs, userID)
	return ok
}

// Deactivate soft-disables a subscription after the transport reported the
// endpoint gone. A later re-subscribe reactivates it via Set.
func (s *Store) Deactivate(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.subs[userID]; ok {
		sub.Active = false
		sub.UpdatedAt = time.Now()
		s.subs[userID] = sub
	}
}

// Len reports the number of stored subscriptions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
