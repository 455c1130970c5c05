package repository

import (
	"context"
	"time"

	"karmafeed/internal/models"
	"karmafeed/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Comment, error)
	// ListTreeRows returns every comment of a post, with author and like data,
	// in creation order using a single read.
	ListTreeRows(ctx context.Context, postID uint, viewerID uint) ([]*models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

type commentRow struct {
	ID             uint
	PostID         uint
	ParentID       *uint
	UserID         uint
	Content        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	AuthorUsername string
	LikeCount      int64
	UserHasLiked   bool
}

func (row commentRow) toModel() *models.Comment {
	return &models.Comment{
		ID:           row.ID,
		PostID:       row.PostID,
		ParentID:     row.ParentID,
		UserID:       row.UserID,
		Content:      row.Content,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		Author:       models.Author{ID: row.UserID, Username: row.AuthorUsername},
		LikeCount:    row.LikeCount,
		UserHasLiked: row.UserHasLiked,
	}
}

func (r *commentRepository) selectCommentRows(ctx context.Context, viewerID uint) *gorm.DB {
	selectQuery := "comments.id, comments.post_id, comments.parent_id, comments.user_id, comments.content, " +
		"comments.created_at, comments.updated_at, users.username AS author_username, " +
		"(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id) AS like_count"

	db := r.db.WithContext(ctx).Table("comments").Joins("JOIN users ON users.id = comments.user_id")
	if viewerID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM comment_likes WHERE comment_likes.comment_id = comments.id AND comment_likes.user_id = ?) AS user_has_liked", viewerID)
	}
	return db.Select(selectQuery + ", false AS user_has_liked")
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("insert", "comments")()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Comment, error) {
	defer observability.TrackQuery("select", "comments")()

	var rows []commentRow
	if err := r.selectCommentRows(ctx, viewerID).
		Where("comments.id = ?", id).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(rows) == 0 {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return rows[0].toModel(), nil
}

func (r *commentRepository) ListTreeRows(ctx context.Context, postID uint, viewerID uint) ([]*models.Comment, error) {
	defer observability.TrackQuery("select", "comments")()

	var rows []commentRow
	if err := r.selectCommentRows(ctx, viewerID).
		Where("comments.post_id = ?", postID).
		Order("comments.created_at ASC, comments.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	comments := make([]*models.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, row.toModel())
	}
	return comments, nil
}
