package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/auth"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockService) GetByID(ctx context.Context, userID string) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func setupRouter(h *Handler, principal *auth.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if principal != nil {
			auth.SetPrincipal(c, *principal)
		}
		c.Next()
	})
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.RefreshToken)
	r.GET("/me", h.GetMe)
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name: "created",
			body: RegisterRequest{Name: "Test User", Email: "test@example.com", Password: "password123"},
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, mock.AnythingOfType("user.RegisterRequest")).
					Return(&Session{User: &User{ID: testUserID, Email: "test@example.com"}, AccessToken: "access", RefreshToken: "refresh"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "short password",
			body:           RegisterRequest{Name: "Test User", Email: "test@example.com", Password: "short"},
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing fields",
			body:           map[string]string{"email": "test@example.com"},
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "email taken",
			body: RegisterRequest{Name: "Test User", Email: "taken@example.com", Password: "password123"},
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, mock.Anything).Return(nil, ErrEmailExists)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			w := doJSON(setupRouter(NewHandler(svc), nil), http.MethodPost, "/auth/register", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Login(t *testing.T) {
	svc := new(MockService)
	svc.On("Login", mock.Anything, LoginRequest{Email: "test@example.com", Password: "bad"}).
		Return(nil, ErrInvalidCredentials)
	svc.On("Login", mock.Anything, LoginRequest{Email: "test@example.com", Password: "password123"}).
		Return(&Session{User: &User{ID: testUserID}, AccessToken: "access", RefreshToken: "refresh"}, nil)
	svc.On("Login", mock.Anything, LoginRequest{Email: "down@example.com", Password: "password123"}).
		Return(nil, errors.New("db down"))

	r := setupRouter(NewHandler(svc), nil)

	w := doJSON(r, http.MethodPost, "/auth/login", LoginRequest{Email: "test@example.com", Password: "bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/login", LoginRequest{Email: "down@example.com", Password: "password123"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/login", LoginRequest{Email: "test@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", resp.RefreshToken)
	assert.Equal(t, testUserID, resp.User.ID)
}

func TestHandler_GetMe(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		w := doJSON(setupRouter(NewHandler(new(MockService)), nil), http.MethodGet, "/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("found", func(t *testing.T) {
		svc := new(MockService)
		svc.On("GetByID", mock.Anything, testUserID).Return(&User{ID: testUserID, PasswordHash: "secret"}, nil)

		w := doJSON(setupRouter(NewHandler(svc), &auth.Principal{UserID: testUserID, Role: auth.RoleMember}), http.MethodGet, "/me", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "secret")
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockService)
		svc.On("GetByID", mock.Anything, testUserID).Return(nil, ErrUserNotFound)

		w := doJSON(setupRouter(NewHandler(svc), &auth.Principal{UserID: testUserID}), http.MethodGet, "/me", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_RefreshToken(t *testing.T) {
	svc := new(MockService)
	svc.On("Refresh", mock.Anything, "expired").Return(nil, auth.ErrTokenExpired)
	svc.On("Refresh", mock.Anything, "gone").Return(nil, ErrUserNotFound)
	svc.On("Refresh", mock.Anything, "good").Return(&Session{User: &User{ID: testUserID}, AccessToken: "new-access"}, nil)

	r := setupRouter(NewHandler(svc), nil)

	w := doJSON(r, http.MethodPost, "/auth/refresh", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": "expired"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": "gone"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": "good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "new-access")
}
