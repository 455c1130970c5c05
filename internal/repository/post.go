package repository

import (
	"context"
	"time"

	"karmafeed/internal/models"
	"karmafeed/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// postRow is a post joined to its author with counts computed in the same statement.
type postRow struct {
	ID             uint
	UserID         uint
	Content        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	AuthorUsername string
	LikeCount      int64
	CommentCount   int64
	UserHasLiked   bool
}

func (row postRow) toModel() *models.Post {
	return &models.Post{
		ID:           row.ID,
		UserID:       row.UserID,
		Content:      row.Content,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		Author:       models.Author{ID: row.UserID, Username: row.AuthorUsername},
		LikeCount:    row.LikeCount,
		CommentCount: row.CommentCount,
		UserHasLiked: row.UserHasLiked,
	}
}

// selectPostRows adds the author join and correlated counts so a page of posts
// or a single post is always one statement.
func (r *postRepository) selectPostRows(ctx context.Context, viewerID uint) *gorm.DB {
	selectQuery := "posts.id, posts.user_id, posts.content, posts.created_at, posts.updated_at, " +
		"users.username AS author_username, " +
		"(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) AS like_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

	db := r.db.WithContext(ctx).Table("posts").Joins("JOIN users ON users.id = posts.user_id")
	if viewerID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM post_likes WHERE post_likes.post_id = posts.id AND post_likes.user_id = ?) AS user_has_liked", viewerID)
	}
	return db.Select(selectQuery + ", false AS user_has_liked")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("insert", "posts")()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	defer observability.TrackQuery("select", "posts")()

	var rows []postRow
	if err := r.selectPostRows(ctx, viewerID).
		Where("posts.id = ?", id).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(rows) == 0 {
		return nil, models.NewNotFoundError("Post", id)
	}
	return rows[0].toModel(), nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("select", "posts")()

	var rows []postRow
	if err := r.selectPostRows(ctx, viewerID).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	posts := make([]*models.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toModel())
	}
	return posts, nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	defer observability.TrackQuery("select", "posts")()

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Limit(1).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
