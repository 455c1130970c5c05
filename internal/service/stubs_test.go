package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"karmafeed/internal/models"
	"karmafeed/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn  func(context.Context, *models.Post) error
	getByIDFn func(context.Context, uint, uint) (*models.Post, error)
	listFn    func(context.Context, int, int, uint) ([]*models.Post, error)
	existsFn  func(context.Context, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset, viewerID)
}
func (s *postRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		listFn:   func(_ context.Context, _, _ int, _ uint) ([]*models.Post, error) { return []*models.Post{}, nil },
		existsFn: func(_ context.Context, _ uint) (bool, error) { return true, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint, uint) (*models.Comment, error)
	listTreeRowsFn func(context.Context, uint, uint) ([]*models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *commentRepoStub) ListTreeRows(ctx context.Context, postID, viewerID uint) ([]*models.Comment, error) {
	return s.listTreeRowsFn(ctx, postID, viewerID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 1}, nil
		},
		listTreeRowsFn: func(_ context.Context, _, _ uint) ([]*models.Comment, error) { return []*models.Comment{}, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getProfileFn    func(context.Context, uint) (*models.UserProfile, error)
	listFn          func(context.Context, int, int) ([]models.UserProfile, error)
	usernamesByIDFn func(context.Context, []uint) (map[uint]string, error)
	createFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetProfile(ctx context.Context, id uint) (*models.UserProfile, error) {
	return s.getProfileFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.UserProfile, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) UsernamesByID(ctx context.Context, ids []uint) (map[uint]string, error) {
	return s.usernamesByIDFn(ctx, ids)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getProfileFn: func(_ context.Context, id uint) (*models.UserProfile, error) {
			return &models.UserProfile{ID: id}, nil
		},
		listFn:          func(_ context.Context, _, _ int) ([]models.UserProfile, error) { return []models.UserProfile{}, nil },
		usernamesByIDFn: func(_ context.Context, _ []uint) (map[uint]string, error) { return map[uint]string{}, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
	}
}

// karmaRepoStub is a stub for repository.KarmaRepository.
type karmaRepoStub struct {
	postLikesFn    func(context.Context, time.Time, time.Time) (map[uint]int64, error)
	commentLikesFn func(context.Context, time.Time, time.Time) (map[uint]int64, error)
}

func (s *karmaRepoStub) PostLikesReceived(ctx context.Context, since, until time.Time) (map[uint]int64, error) {
	return s.postLikesFn(ctx, since, until)
}
func (s *karmaRepoStub) CommentLikesReceived(ctx context.Context, since, until time.Time) (map[uint]int64, error) {
	return s.commentLikesFn(ctx, since, until)
}

type likeKey struct {
	target   models.LikeTarget
	userID   uint
	targetID uint
}

// memoryLikeRepo is an in-memory repository.LikeRepository. Insert enforces
// (target, user, target id) uniqueness the way the storage constraint does.
// afterExists, when set, runs after every existence check.
type memoryLikeRepo struct {
	mu          sync.Mutex
	rows        map[likeKey]struct{}
	afterExists func()
	insertErr   error
}

func newMemoryLikeRepo() *memoryLikeRepo {
	return &memoryLikeRepo{rows: make(map[likeKey]struct{})}
}

func (r *memoryLikeRepo) Transaction(_ context.Context, fn func(tx repository.LikeRepository) error) error {
	return fn(r)
}

func (r *memoryLikeRepo) Exists(_ context.Context, target models.LikeTarget, userID, targetID uint) (bool, error) {
	r.mu.Lock()
	_, ok := r.rows[likeKey{target, userID, targetID}]
	r.mu.Unlock()
	if r.afterExists != nil {
		r.afterExists()
	}
	return ok, nil
}

func (r *memoryLikeRepo) Insert(_ context.Context, target models.LikeTarget, userID, targetID uint) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := likeKey{target, userID, targetID}
	if _, ok := r.rows[key]; ok {
		return repository.ErrDuplicateLike
	}
	r.rows[key] = struct{}{}
	return nil
}

func (r *memoryLikeRepo) Delete(_ context.Context, target models.LikeTarget, userID, targetID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := likeKey{target, userID, targetID}
	_, ok := r.rows[key]
	delete(r.rows, key)
	return ok, nil
}

func (r *memoryLikeRepo) Count(_ context.Context, target models.LikeTarget, targetID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key := range r.rows {
		if key.target == target && key.targetID == targetID {
			n++
		}
	}
	return n, nil
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}

// assertNotFoundError asserts that err is an AppError with code NOT_FOUND.
func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeNotFound)
}
