package models

import "time"

// PostLike records that a user liked a post. The (UserID, PostID) pair is unique.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_user_post,priority:1;index:idx_post_likes_user_id" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_user_post,priority:2;index:idx_post_likes_post_id" json:"post_id"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"not null;index:idx_post_likes_created_at" json:"created_at"`
}

// TableName returns the database table name for PostLike.
func (PostLike) TableName() string {
	return "post_likes"
}

// CommentLike records that a user liked a comment. The (UserID, CommentID) pair is unique.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_likes_user_comment,priority:1;index:idx_comment_likes_user_id" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_likes_user_comment,priority:2;index:idx_comment_likes_comment_id" json:"comment_id"`
	Comment   Comment   `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"not null;index:idx_comment_likes_created_at" json:"created_at"`
}

// TableName returns the database table name for CommentLike.
func (CommentLike) TableName() string {
	return "comment_likes"
}

// LikeTarget identifies what kind of entity a like toggle applies to.
type LikeTarget string

const (
	LikeTargetPost    LikeTarget = "post"
	LikeTargetComment LikeTarget = "comment"
)

// LikeToggleResult is the outcome of a like toggle as seen by the caller.
type LikeToggleResult struct {
	Liked       bool  `json:"liked"`
	LikeCount   int64 `json:"like_count"`
	KarmaEarned int   `json:"karma_earned"`
}
