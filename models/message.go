package models

import "time"

// Message is a chat message inside a group. Deletion is soft: the text is
// cleared in storage and the deleted flag makes readers render a placeholder.
type Message struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	GroupID      uint       `gorm:"index;not null" json:"group_id"`
	UserID       uint       `gorm:"index;not null" json:"user_id"`
	SenderName   string     `gorm:"size:64" json:"sender_name"`
	SenderAvatar string     `gorm:"size:512" json:"sender_avatar"`
	Text         string     `gorm:"type:text" json:"text"`
	EditedAt     *time.Time `json:"edited_at"`
	Deleted      bool       `gorm:"default:false" json:"deleted"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
