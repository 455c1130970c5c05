// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents an account that can author posts and comments and receive karma.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:30;uniqueIndex:idx_users_username;not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Author is the public projection of a user embedded in posts and comments.
type Author struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// UserProfile is the read-only user view with aggregate counts.
type UserProfile struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	PostCount    int64     `json:"post_count"`
	CommentCount int64     `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}
