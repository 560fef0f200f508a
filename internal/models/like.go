package models

import "time"

// Like represents a user's like on a post.
// The (UserID, PostID) pair is unique; the constraint is the serialization
// point for concurrent toggles, so rows are hard-deleted rather than
// soft-deleted.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Post Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}
