package models

import "time"

// Group is a time-boxed reading challenge joined by invite code.
type Group struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"size:255;not null" json:"name"`
	Description  string      `gorm:"type:text" json:"description"`
	CreatorID    uint        `gorm:"index;not null" json:"creator_id"`
	StartDate    time.Time   `gorm:"type:date;not null" json:"start_date"`
	EndDate      time.Time   `gorm:"type:date;not null" json:"end_date"`
	DurationDays int         `gorm:"not null" json:"duration_days"`
	InviteCode   string      `gorm:"size:16;uniqueIndex;not null" json:"invite_code"`
	MemberCount  int         `gorm:"not null;default:0" json:"member_count"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Creator      User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"creator"`
	Members      []GroupMember `json:"-"`
}

// Ended reports whether the challenge window has closed. Check-ins are
// accepted until the end of the last day, not the midnight that starts it.
func (g *Group) Ended(now time.Time) bool {
	endOfLastDay := time.Date(g.EndDate.Year(), g.EndDate.Month(), g.EndDate.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
	return !now.Before(endOfLastDay)
}

// GroupMember links a user to a group. The composite unique index makes a
// double join impossible at the storage layer.
type GroupMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	GroupID  uint      `gorm:"not null;uniqueIndex:idx_group_member" json:"group_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_group_member" json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
	User     User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
}
