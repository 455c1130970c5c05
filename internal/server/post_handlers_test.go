package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"karmafeed/internal/models"
	"karmafeed/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	args := m.Called(ctx, limit, offset, viewerID)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Exists(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Comment, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListTreeRows(ctx context.Context, postID uint, viewerID uint) ([]*models.Comment, error) {
	args := m.Called(ctx, postID, viewerID)
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func withUser(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	}
}

func TestCreatePost(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(m *MockPostRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{"content": "Hello world"},
			mockSetup: func(m *MockPostRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
					return p.UserID == 1 && p.Content == "Hello world"
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*models.Post).ID = 10
				}).Return(nil)
				m.On("GetByID", mock.Anything, uint(10), uint(1)).
					Return(&models.Post{ID: 10, Content: "Hello world", Author: models.Author{ID: 1, Username: "alice"}}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing Content",
			body:           map[string]string{"content": "   "},
			mockSetup:      func(*MockPostRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Storage Failure",
			body: map[string]string{"content": "Hello world"},
			mockSetup: func(m *MockPostRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(models.NewInternalError(errors.New("db down")))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			postRepo := new(MockPostRepository)
			tt.mockSetup(postRepo)
			s := &Server{postService: service.NewPostService(postRepo, new(MockCommentRepository))}

			app := fiber.New()
			app.Post("/posts", withUser(1), s.CreatePost)

			resp := postJSON(t, app, "/posts", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			postRepo.AssertExpectations(t)
		})
	}
}

func TestGetPosts_PassesPaginationAndViewer(t *testing.T) {
	postRepo := new(MockPostRepository)
	postRepo.On("List", mock.Anything, 5, 10, uint(3)).
		Return([]*models.Post{{ID: 2}, {ID: 1}}, nil)
	s := &Server{postService: service.NewPostService(postRepo, new(MockCommentRepository))}

	app := fiber.New()
	app.Get("/posts", withUser(3), s.GetPosts)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts?limit=5&offset=10", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var posts []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&posts))
	assert.Len(t, posts, 2)
	postRepo.AssertExpectations(t)
}

func TestGetPost(t *testing.T) {
	tests := []struct {
		name           string
		param          string
		mockSetup      func(p *MockPostRepository, c *MockCommentRepository)
		expectedStatus int
	}{
		{
			name:  "Success",
			param: "7",
			mockSetup: func(p *MockPostRepository, c *MockCommentRepository) {
				p.On("GetByID", mock.Anything, uint(7), uint(2)).Return(&models.Post{ID: 7, Content: "post"}, nil)
				c.On("ListTreeRows", mock.Anything, uint(7), uint(2)).Return([]*models.Comment{
					{ID: 1, PostID: 7},
					{ID: 2, PostID: 7, ParentID: ptrUint(1)},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "Not Found",
			param: "99",
			mockSetup: func(p *MockPostRepository, _ *MockCommentRepository) {
				p.On("GetByID", mock.Anything, uint(99), uint(2)).Return(nil, models.NewNotFoundError("Post", 99))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Invalid ID",
			param:          "abc",
			mockSetup:      func(*MockPostRepository, *MockCommentRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			postRepo := new(MockPostRepository)
			commentRepo := new(MockCommentRepository)
			tt.mockSetup(postRepo, commentRepo)
			s := &Server{postService: service.NewPostService(postRepo, commentRepo)}

			app := fiber.New()
			app.Get("/posts/:id", withUser(2), s.GetPost)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/"+tt.param, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var detail struct {
					ID       uint `json:"id"`
					Comments []struct {
						ID      uint `json:"id"`
						Replies []struct {
							ID uint `json:"id"`
						} `json:"replies"`
					} `json:"comments"`
				}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
				require.Len(t, detail.Comments, 1)
				require.Len(t, detail.Comments[0].Replies, 1)
				assert.Equal(t, uint(2), detail.Comments[0].Replies[0].ID)
			}
			postRepo.AssertExpectations(t)
			commentRepo.AssertExpectations(t)
		})
	}
}

func ptrUint(v uint) *uint { return &v }
