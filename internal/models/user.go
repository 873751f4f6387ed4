// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account.
//
// Email and username are unique across all rows, including soft-deleted ones:
// deleting an account reserves its identifiers until the row is purged.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Username  string         `gorm:"size:255;not null;uniqueIndex" json:"username"`
	Password  string         `gorm:"size:60;not null" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PublicUser is the wire representation of an account. The password hash is
// never serialized, and the active profile picture is attached when present.
type PublicUser struct {
	ID             uint            `json:"id"`
	Email          string          `json:"email"`
	Username       string          `json:"username"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	ProfilePicture *ProfilePicture `json:"profile_picture,omitempty"`
}

// Public converts a User into its wire representation.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
