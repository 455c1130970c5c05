package models

import "time"

// Comment is a reply to a post or to another comment on the same post.
// A nil ParentID marks a top-level comment.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index:idx_comments_post_id;index:idx_comments_post_created,priority:1" json:"post"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	ParentID  *uint     `gorm:"index:idx_comments_parent_id" json:"parent"`
	Parent    *Comment  `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	UserID    uint      `gorm:"not null;index:idx_comments_user_id" json:"-"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_comments_post_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author       Author `gorm:"-" json:"author"`
	LikeCount    int64  `gorm:"-" json:"like_count"`
	UserHasLiked bool   `gorm:"-" json:"user_has_liked"`
}

// CommentNode is one node of a comment forest. Replies are ordered by
// creation time, oldest first, and are never nil.
type CommentNode struct {
	ID           uint           `json:"id"`
	Post         uint           `json:"post"`
	Parent       *uint          `json:"parent"`
	Author       Author         `json:"author"`
	Content      string         `json:"content"`
	CreatedAt    time.Time      `json:"created_at"`
	LikeCount    int64          `json:"like_count"`
	UserHasLiked bool           `json:"user_has_liked"`
	Replies      []*CommentNode `json:"replies"`
}
