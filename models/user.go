package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a reader account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Username      string         `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email         string         `gorm:"size:255" json:"email"`
	PasswordHash  string         `gorm:"size:255" json:"-"`
	Provider      string         `gorm:"size:32" json:"provider"`
	ProviderID    string         `gorm:"size:255" json:"provider_id"`
	RegisterIP    string         `gorm:"size:45" json:"register_ip"`
	AvatarURL     string         `gorm:"size:512" json:"avatar_url"`
	ActiveGroupID *uint          `gorm:"index" json:"active_group_id"`
	CurrentStreak int            `gorm:"default:0" json:"current_streak"`
	MaxStreak     int            `gorm:"default:0" json:"max_streak"`
	TotalCheckins int            `gorm:"default:0" json:"total_checkins"`
	LastCheckinAt string         `gorm:"size:10" json:"last_checkin_at"` // YYYY-MM-DD
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	CheckIns      []CheckIn      `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
