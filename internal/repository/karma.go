package repository

import (
	"context"
	"time"

	"karmafeed/internal/models"
	"karmafeed/internal/observability"

	"gorm.io/gorm"
)

// KarmaRepository counts likes received per author inside a time window.
// Post likes and comment likes are always counted by separate statements;
// joining both like tables in one grouped query multiplies the counts.
type KarmaRepository interface {
	PostLikesReceived(ctx context.Context, since, until time.Time) (map[uint]int64, error)
	CommentLikesReceived(ctx context.Context, since, until time.Time) (map[uint]int64, error)
}

type karmaRepository struct {
	db *gorm.DB
}

// NewKarmaRepository creates a new KarmaRepository
func NewKarmaRepository(db *gorm.DB) KarmaRepository {
	return &karmaRepository{db: db}
}

type likesReceivedRow struct {
	UserID uint
	Likes  int64
}

// PostLikesReceived returns, per post author, the number of post likes created in [since, until].
func (r *karmaRepository) PostLikesReceived(ctx context.Context, since, until time.Time) (map[uint]int64, error) {
	defer observability.TrackQuery("aggregate", "post_likes")()

	var rows []likesReceivedRow
	if err := r.db.WithContext(ctx).
		Table("post_likes").
		Select("posts.user_id AS user_id, COUNT(*) AS likes").
		Joins("JOIN posts ON posts.id = post_likes.post_id").
		Where("post_likes.created_at >= ? AND post_likes.created_at <= ?", since, until).
		Group("posts.user_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return toCountMap(rows), nil
}

// CommentLikesReceived returns, per comment author, the number of comment likes created in [since, until].
func (r *karmaRepository) CommentLikesReceived(ctx context.Context, since, until time.Time) (map[uint]int64, error) {
	defer observability.TrackQuery("aggregate", "comment_likes")()

	var rows []likesReceivedRow
	if err := r.db.WithContext(ctx).
		Table("comment_likes").
		Select("comments.user_id AS user_id, COUNT(*) AS likes").
		Joins("JOIN comments ON comments.id = comment_likes.comment_id").
		Where("comment_likes.created_at >= ? AND comment_likes.created_at <= ?", since, until).
		Group("comments.user_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return toCountMap(rows), nil
}

func toCountMap(rows []likesReceivedRow) map[uint]int64 {
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.Likes
	}
	return counts
}
