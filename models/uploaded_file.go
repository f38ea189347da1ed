package models

import "time"

// UploadedFile tracks a stored check-in image until the check-in that owns
// it commits. Rows that keep their expiry are orphans and get reaped.
type UploadedFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FilePath  string    `gorm:"size:1024;not null" json:"file_path"` // absolute or relative filesystem path
	URL       string    `gorm:"size:1024;not null" json:"url"`       // public URL like /static/uploads/...
	ExpireAt  time.Time `gorm:"index" json:"expire_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
