package server

import (
	"encoding/json"
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

func TestGetUserProfile(t *testing.T) {
	tests := []struct {
		name           string
		userIDParam    string
		mockSetup      func(m *MockUserRepository)
		expectedStatus int
	}{
		{
			name:        "Success",
			userIDParam: "1",
			mockSetup: func(m *MockUserRepository) {
				m.On("GetProfile", mock.Anything, uint(1)).
					Return(&models.UserProfile{ID: 1, Username: "testuser", PostCount: 3}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid ID",
			userIDParam:    "abc",
			mockSetup:      func(*MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Not Found",
			userIDParam: "99",
			mockSetup: func(m *MockUserRepository) {
				m.On("GetProfile", mock.Anything, uint(99)).Return(nil, models.NewNotFoundError("User", 99))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.mockSetup(mockRepo)
			s := &Server{userService: service.NewUserService(mockRepo)}

			app := fiber.New()
			app.Get("/users/:id", s.GetUserProfile)

			req := httptest.NewRequest(http.MethodGet, "/users/"+tt.userIDParam, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestGetAllUsers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("List", mock.Anything, 100, 0).Return([]models.UserProfile{
		{ID: 1, Username: "alice"},
		{ID: 2, Username: "bob"},
	}, nil)
	s := &Server{userService: service.NewUserService(mockRepo)}

	app := fiber.New()
	app.Get("/users", s.GetAllUsers)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var users []models.UserProfile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[1].Username)
	mockRepo.AssertExpectations(t)
}
