package models

import "time"

// CheckIn is one attestation of reading activity for a calendar day within a
// group. The composite unique index enforces at most one record per
// (user, group, day) directly in the database, so concurrent attempts cannot
// both succeed.
type CheckIn struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_checkin_user_group_date" json:"user_id"`
	GroupID     uint      `gorm:"not null;uniqueIndex:idx_checkin_user_group_date;index" json:"group_id"`
	CheckinDate string    `gorm:"size:10;not null;uniqueIndex:idx_checkin_user_group_date" json:"checkin_date"` // YYYY-MM-DD
	Username    string    `gorm:"size:64" json:"username"` // denormalized at write time
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"size:1024" json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}
