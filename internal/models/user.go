// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered author or reader.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Name      string         `json:"name"`
	Username  string         `gorm:"unique" json:"username"`
	Bio       string         `json:"bio"`
	Avatar    string         `json:"avatar"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Posts     []Post         `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}

// PublicProfile strips fields that must never leave the server when the
// user is viewed by someone else.
func (u *User) PublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":         u.ID,
		"name":       u.Name,
		"username":   u.Username,
		"bio":        u.Bio,
		"avatar":     u.Avatar,
		"created_at": u.CreatedAt,
	}
}
