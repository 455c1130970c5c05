package repository

import (
	"context"
	"fmt"

	"karmafeed/internal/models"
	"karmafeed/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository reads and writes like rows for posts and comments. Methods
// called on the repository passed to Transaction run inside that transaction.
type LikeRepository interface {
	Transaction(ctx context.Context, fn func(tx LikeRepository) error) error
	Exists(ctx context.Context, target models.LikeTarget, userID, targetID uint) (bool, error)
	// Insert creates a like row. It returns ErrDuplicateLike when the
	// uniqueness constraint rejects the row; the enclosing transaction
	// stays usable in that case.
	Insert(ctx context.Context, target models.LikeTarget, userID, targetID uint) error
	// Delete hard-deletes the like row and reports whether one was removed.
	Delete(ctx context.Context, target models.LikeTarget, userID, targetID uint) (bool, error)
	Count(ctx context.Context, target models.LikeTarget, targetID uint) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

type likeTable struct {
	name   string
	column string
}

func tableFor(target models.LikeTarget) (likeTable, error) {
	switch target {
	case models.LikeTargetPost:
		return likeTable{name: "post_likes", column: "post_id"}, nil
	case models.LikeTargetComment:
		return likeTable{name: "comment_likes", column: "comment_id"}, nil
	default:
		return likeTable{}, fmt.Errorf("unknown like target %q", target)
	}
}

func (r *likeRepository) Transaction(ctx context.Context, fn func(tx LikeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&likeRepository{db: tx})
	})
}

func (r *likeRepository) Exists(ctx context.Context, target models.LikeTarget, userID, targetID uint) (bool, error) {
	t, err := tableFor(target)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	defer observability.TrackQuery("select", t.name)()

	var count int64
	if err := r.db.WithContext(ctx).
		Table(t.name).
		Where("user_id = ? AND "+t.column+" = ?", userID, targetID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *likeRepository) Insert(ctx context.Context, target models.LikeTarget, userID, targetID uint) error {
	var row interface{}
	switch target {
	case models.LikeTargetPost:
		row = &models.PostLike{UserID: userID, PostID: targetID}
	case models.LikeTargetComment:
		row = &models.CommentLike{UserID: userID, CommentID: targetID}
	default:
		return models.NewInternalError(fmt.Errorf("unknown like target %q", target))
	}
	defer observability.TrackQuery("insert", string(target)+"_likes")()

	// The nested transaction is a savepoint when r.db is already inside a
	// transaction, so a rejected insert only rolls back to that savepoint.
	err := r.db.WithContext(ctx).Transaction(func(sp *gorm.DB) error {
		return sp.Omit(clause.Associations).Create(row).Error
	})
	if err == nil {
		return nil
	}
	if isUniqueConstraintError(err) {
		return ErrDuplicateLike
	}
	return models.NewInternalError(err)
}

func (r *likeRepository) Delete(ctx context.Context, target models.LikeTarget, userID, targetID uint) (bool, error) {
	t, err := tableFor(target)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	defer observability.TrackQuery("delete", t.name)()

	result := r.db.WithContext(ctx).
		Exec("DELETE FROM "+t.name+" WHERE user_id = ? AND "+t.column+" = ?", userID, targetID)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *likeRepository) Count(ctx context.Context, target models.LikeTarget, targetID uint) (int64, error) {
	t, err := tableFor(target)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	defer observability.TrackQuery("count", t.name)()

	var count int64
	if err := r.db.WithContext(ctx).
		Table(t.name).
		Where(t.column+" = ?", targetID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
