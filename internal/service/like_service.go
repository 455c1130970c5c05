package service

import (
	"context"
	"errors"
	"log/slog"

	"karmafeed/internal/cache"
	"karmafeed/internal/middleware"
	"karmafeed/internal/models"
	"karmafeed/internal/observability"
	"karmafeed/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type LikeService struct {
	likeRepo    repository.LikeRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
) *LikeService {
	return &LikeService{
		likeRepo:    likeRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

// TogglePostLike likes the post if userID has not liked it yet, otherwise removes the like.
func (s *LikeService) TogglePostLike(ctx context.Context, userID, postID uint) (*models.LikeToggleResult, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Post", postID)
	}

	result, err := s.toggle(ctx, models.LikeTargetPost, userID, postID, PostLikeKarma)
	if err != nil {
		return nil, err
	}
	cache.InvalidatePost(ctx, postID)
	return result, nil
}

// ToggleCommentLike likes the comment if userID has not liked it yet, otherwise removes the like.
func (s *LikeService) ToggleCommentLike(ctx context.Context, userID, commentID uint) (*models.LikeToggleResult, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID, 0)
	if err != nil {
		return nil, err
	}

	result, err := s.toggle(ctx, models.LikeTargetComment, userID, commentID, CommentLikeKarma)
	if err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.PostKey(comment.PostID))
	return result, nil
}

// toggle flips the like inside one transaction. A unique violation on insert
// means a concurrent request created the row first; the caller still sees
// liked=true and the count is read after the savepoint rollback.
func (s *LikeService) toggle(ctx context.Context, target models.LikeTarget, userID, targetID uint, weight int) (*models.LikeToggleResult, error) {
	span, ctx := observability.NewSpan(ctx, "like.toggle",
		attribute.String("like.target", string(target)),
		attribute.Int64("like.target_id", int64(targetID)),
	)
	defer span.End()

	var result models.LikeToggleResult
	outcome := observability.OutcomeLiked

	err := s.likeRepo.Transaction(ctx, func(tx repository.LikeRepository) error {
		exists, err := tx.Exists(ctx, target, userID, targetID)
		if err != nil {
			return err
		}

		if exists {
			if _, err := tx.Delete(ctx, target, userID, targetID); err != nil {
				return err
			}
			result.Liked = false
			result.KarmaEarned = -weight
			outcome = observability.OutcomeUnliked
		} else {
			err := tx.Insert(ctx, target, userID, targetID)
			switch {
			case errors.Is(err, repository.ErrDuplicateLike):
				outcome = observability.OutcomeRaceRecovered
			case err != nil:
				return err
			}
			result.Liked = true
			result.KarmaEarned = weight
		}

		count, err := tx.Count(ctx, target, targetID)
		if err != nil {
			return err
		}
		result.LikeCount = count
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	observability.RecordLikeToggle(string(target), outcome)
	span.AddAttributes(attribute.String("like.outcome", outcome))
	if outcome == observability.OutcomeRaceRecovered {
		middleware.Logger.InfoContext(ctx, "like insert lost race, reporting liked",
			slog.String("target", string(target)),
			slog.Uint64("target_id", uint64(targetID)),
			slog.Uint64("user_id", uint64(userID)),
		)
	}
	return &result, nil
}
