package models

import "time"

// Circle is a small private group users share entries with.
type Circle struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"size:64;not null" json:"name"`
	OwnerID    uint           `gorm:"index;not null" json:"owner_id"`
	InviteCode string         `gorm:"size:36;uniqueIndex;not null" json:"invite_code"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Members    []CircleMember `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// CircleMember records membership. The pair (circle, user) is unique so
// joining twice is a no-op at the storage layer.
type CircleMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	CircleID uint      `gorm:"uniqueIndex:uniq_circle_user;not null" json:"circle_id"`
	UserID   uint      `gorm:"uniqueIndex:uniq_circle_user;index;not null" json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}
