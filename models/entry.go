package models

import "time"

// GratitudeEntry is a single daily journal entry. EntryDate is the calendar
// day the entry counts toward, which may differ from CreatedAt when a client
// backfills. Pledge entries come from onboarding and never count toward
// streaks or circle participation.
type GratitudeEntry struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"index;not null" json:"user_id"`
	Content   string       `gorm:"type:text;not null" json:"content"`
	Mood      int          `gorm:"default:0" json:"mood"` // 1-5, 0 when not recorded
	EntryDate time.Time    `gorm:"type:date;index;not null" json:"entry_date"`
	Pledge    bool         `gorm:"default:false" json:"pledge"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	User      User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Shares    []EntryShare `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"shares"`
}

// EntryShare links an entry to a circle it was shared with.
type EntryShare struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EntryID   uint      `gorm:"uniqueIndex:uniq_entry_circle;not null" json:"entry_id"`
	CircleID  uint      `gorm:"uniqueIndex:uniq_entry_circle;index;not null" json:"circle_id"`
	CreatedAt time.Time `json:"created_at"`
}
