package models

import (
	"time"

	"github.com/google/uuid"
)

// ProfilePicture is a blob-reference record for an uploaded avatar.
//
// An account may accumulate many rows over time but holds at most one with
// IsDeleted = false. That invariant is enforced by the upload/replace
// transaction in the picture service, not by a database constraint.
// Soft deletion is explicit here (IsDeleted/DeletedAt) rather than GORM's
// DeletedAt because "active" queries filter on the flag directly.
type ProfilePicture struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	Path       string     `gorm:"size:255;not null;uniqueIndex" json:"path"`
	UploadedAt time.Time  `json:"uploaded_at"`
	DeletedAt  *time.Time `json:"-"`
	IsDeleted  bool       `gorm:"not null;default:false" json:"-"`
}

// TableName keeps the table name singular, matching the original schema.
func (ProfilePicture) TableName() string {
	return "profile_pictures"
}
