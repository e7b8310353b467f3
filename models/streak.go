package models

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxRings caps the number of weekly rings a streak can earn.
const MaxRings = 5

// WeeklyStreak tracks one user's completed days within a Sunday-anchored
// week. CompletedDays is a sorted comma-separated list of day indexes
// (0=Sunday..6=Saturday). Version guards read-modify-write updates.
type WeeklyStreak struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"uniqueIndex:uniq_user_week;not null" json:"user_id"`
	WeekStart      time.Time `gorm:"type:date;uniqueIndex:uniq_user_week;not null" json:"week_start"`
	CompletedDays  string    `gorm:"size:32" json:"-"`
	RingsCompleted int       `gorm:"default:0" json:"rings_completed"`
	Version        int64     `gorm:"default:0" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CommunityStreak is the circle-wide counterpart of WeeklyStreak. A day is
// completed only when every current member posted that day.
// ParticipationThreshold is persisted at 1.0 for forward compatibility but
// the completion rule is strict full participation regardless of its value.
type CommunityStreak struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	CircleID               uint      `gorm:"uniqueIndex:uniq_circle_week;not null" json:"circle_id"`
	WeekStart              time.Time `gorm:"type:date;uniqueIndex:uniq_circle_week;not null" json:"week_start"`
	CompletedDays          string    `gorm:"size:32" json:"-"`
	RingsCompleted         int       `gorm:"default:0" json:"rings_completed"`
	ParticipationThreshold float64   `gorm:"default:1.0" json:"participation_threshold"`
	Version                int64     `gorm:"default:0" json:"-"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// ParseDays decodes a CompletedDays column value into a sorted index slice.
func ParseDays(encoded string) []int {
	if strings.TrimSpace(encoded) == "" {
		return []int{}
	}
	parts := strings.Split(encoded, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, n)
	}
	sort.Ints(days)
	return days
}

// EncodeDays renders a day-index slice back into the column format.
func EncodeDays(days []int) string {
	sorted := append([]int(nil), days...)
	sort.Ints(sorted)
	parts := make([]string, 0, len(sorted))
	for _, d := range sorted {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

// HasDay reports whether the encoded day set contains idx.
func HasDay(encoded string, idx int) bool {
	for _, d := range ParseDays(encoded) {
		if d == idx {
			return true
		}
	}
	return false
}

// Rings derives the ring count from an encoded day set.
func Rings(encoded string) int {
	n := len(ParseDays(encoded))
	if n > MaxRings {
		return MaxRings
	}
	return n
}
