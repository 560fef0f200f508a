// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a blog post, addressed by its unique slug.
// Tags are stored as a native list; the JSON serializer handles the
// storage boundary so the API never sees a comma-joined string.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Excerpt     string     `json:"excerpt"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Tags        []string   `gorm:"serializer:json" json:"tags"`
	Published   bool       `gorm:"index" json:"published"`
	PublishedAt *time.Time `json:"published_at"`
	AuthorID    uint       `gorm:"not null;index" json:"author_id"`
	Author      User       `gorm:"foreignKey:AuthorID" json:"author"`
	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->" json:"like_count"`
	// CommentCount is not persisted; computed at query time
	CommentCount int `gorm:"->" json:"comment_count"`
	// Liked indicates whether the requesting user liked this post (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
