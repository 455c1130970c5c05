package service

import (
	"context"

	"karmafeed/internal/cache"
	"karmafeed/internal/models"
	"karmafeed/internal/observability"
	"karmafeed/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultPageSize is the post list page size when the caller gives none.
const DefaultPageSize = 20

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

type CreatePostInput struct {
	UserID  uint
	Content string
}

type ListPostsInput struct {
	Limit    int
	Offset   int
	ViewerID uint
}

func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content, err := sanitizeContent(in.Content, maxPostContentLen, "Content")
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:  in.UserID,
		Content: content,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	cache.InvalidatePostsList(ctx)
	cache.InvalidateUser(ctx, in.UserID)
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// ListPosts returns one page of post summaries, newest first. The anonymous
// first page is served through the cache.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	if in.Limit <= 0 {
		in.Limit = DefaultPageSize
	}
	if in.Offset < 0 {
		in.Offset = 0
	}

	if in.ViewerID == 0 && in.Offset == 0 && in.Limit == DefaultPageSize {
		posts := []*models.Post{}
		err := cache.Aside(ctx, cache.PostsListKey, &posts, cache.ListTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.List(ctx, in.Limit, in.Offset, 0)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}
		return posts, nil
	}

	return s.postRepo.List(ctx, in.Limit, in.Offset, in.ViewerID)
}

// GetPost returns the post with its full comment forest using two reads:
// one for the post and one for all of its comments.
func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*models.PostDetail, error) {
	if viewerID != 0 {
		return s.loadPostDetail(ctx, postID, viewerID)
	}

	var detail *models.PostDetail
	err := cache.Aside(ctx, cache.PostKey(postID), &detail, cache.PostTTL, func() error {
		var fetchErr error
		detail, fetchErr = s.loadPostDetail(ctx, postID, 0)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *PostService) loadPostDetail(ctx context.Context, postID, viewerID uint) (*models.PostDetail, error) {
	span, ctx := observability.NewSpan(ctx, "post.detail", attribute.Int64("post.id", int64(postID)))
	defer span.End()

	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	rows, err := s.commentRepo.ListTreeRows(ctx, postID, viewerID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	roots, depth := buildCommentTree(rows)
	observability.ObserveCommentTree(len(rows), depth)
	span.AddAttributes(
		attribute.Int("comment_tree.nodes", len(rows)),
		attribute.Int("comment_tree.depth", depth),
	)

	return &models.PostDetail{Post: *post, Comments: roots}, nil
}
