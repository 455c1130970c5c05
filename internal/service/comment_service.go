package service

import (
	"context"

	"karmafeed/internal/cache"
	"karmafeed/internal/models"
	"karmafeed/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	UserID   uint
	PostID   uint
	ParentID *uint
	Content  string
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// CreateComment adds a top-level comment, or a reply when ParentID is set.
// The parent must belong to the same post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content, err := sanitizeContent(in.Content, maxCommentContentLen, "Comment")
	if err != nil {
		return nil, err
	}

	exists, err := s.postRepo.Exists(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID, 0)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		ParentID: in.ParentID,
		UserID:   in.UserID,
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, in.PostID)
	cache.InvalidateUser(ctx, in.UserID)
	return s.commentRepo.GetByID(ctx, comment.ID, in.UserID)
}

func (s *CommentService) GetComment(ctx context.Context, id, viewerID uint) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id, viewerID)
}
