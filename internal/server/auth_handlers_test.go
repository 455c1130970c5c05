package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"karmafeed/internal/config"
	"karmafeed/internal/middleware"
	"karmafeed/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret-key-12345678901234567890123456789012"

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetProfile(ctx context.Context, id uint) (*models.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]models.UserProfile, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.UserProfile), args.Error(1)
}

func (m *MockUserRepository) UsernamesByID(ctx context.Context, ids []uint) (map[uint]string, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uint]string), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(m *MockUserRepository)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Success",
			body: map[string]string{"username": "testuser", "password": "Password123"},
			mockSetup: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
					return u.Username == "testuser" &&
						bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Password123")) == nil
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*models.User).ID = 9
				}).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate Username",
			body: map[string]string{"username": "taken", "password": "Password123"},
			mockSetup: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(models.NewConflictError("Username already taken"))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   models.CodeConflict,
		},
		{
			name:           "Missing Fields",
			body:           map[string]string{"username": ""},
			mockSetup:      func(*MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   models.CodeValidation,
		},
		{
			name:           "Weak Password",
			body:           map[string]string{"username": "testuser", "password": "password"},
			mockSetup:      func(*MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   models.CodeValidation,
		},
		{
			name:           "Invalid Username",
			body:           map[string]string{"username": "no spaces!", "password": "Password123"},
			mockSetup:      func(*MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   models.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.mockSetup(mockRepo)
			s := &Server{
				config:   &config.Config{JWTSecret: testJWTSecret},
				userRepo: mockRepo,
			}
			app := fiber.New()
			app.Post("/signup", s.Signup)

			resp := postJSON(t, app, "/signup", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, body["code"])
			} else {
				assert.NotEmpty(t, body["token"])
				user := body["user"].(map[string]any)
				assert.Equal(t, float64(9), user["id"])
				assert.NotContains(t, user, "password_hash")
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{ID: 4, Username: "alice", PasswordHash: string(hash)}

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(m *MockUserRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{"username": "alice", "password": "Password123"},
			mockSetup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "alice").Return(stored, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Wrong Password",
			body: map[string]string{"username": "alice", "password": "Password999"},
			mockSetup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "alice").Return(stored, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Unknown User",
			body: map[string]string{"username": "ghost", "password": "Password123"},
			mockSetup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.mockSetup(mockRepo)
			s := &Server{
				config:   &config.Config{JWTSecret: testJWTSecret},
				userRepo: mockRepo,
			}
			app := fiber.New()
			app.Post("/login", s.Login)

			resp := postJSON(t, app, "/login", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestGenerateToken_AcceptedByAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: testJWTSecret}
	middleware.InitMiddleware(cfg)
	issuedAt := time.Now().Truncate(time.Second)
	s := &Server{config: cfg, now: func() time.Time { return issuedAt }}

	token, err := s.generateToken(42, "alice")
	require.NoError(t, err)

	userID, err := middleware.ParseUserID(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims["username"])
	assert.NotEmpty(t, claims["jti"])
	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(7*24*time.Hour).Unix(), exp.Unix())

	other, err := s.generateToken(42, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, token, other, "every token carries a fresh jti")
}

func TestGenerateToken_RequiresSecret(t *testing.T) {
	s := &Server{config: &config.Config{}}
	_, err := s.generateToken(1, "alice")
	assert.Error(t, err)
}
