package models

import "time"

// Follow represents one user following another.
// The (FollowerID, FollowingID) pair is unique and a user can never
// follow themselves; the service layer rejects self-follows before any
// row is written.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Relationships
	Follower  User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following User `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
