package models

import "time"

// Post is a top-level text entry in the feed.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_posts_user_id" json:"-"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_posts_created_at" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Author, LikeCount, CommentCount and UserHasLiked are computed at query time.
	Author       Author `gorm:"-" json:"author"`
	LikeCount    int64  `gorm:"-" json:"like_count"`
	CommentCount int64  `gorm:"-" json:"comment_count"`
	UserHasLiked bool   `gorm:"-" json:"user_has_liked"`
}

// PostDetail is a post together with its full comment forest.
type PostDetail struct {
	Post
	Comments []*CommentNode `json:"comments"`
}
