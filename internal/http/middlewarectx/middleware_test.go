package middlewarectx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/launchboard/launch-board/internal/models"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*models.User, string, bool, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Bool(2), args.Error(3)
	}
	return args.Get(0).(*models.User), args.String(1), args.Bool(2), args.Error(3)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		setupMocks     func(*MockAuthService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:       "success - valid token populates context",
			authHeader: "Bearer valid-token",
			setupMocks: func(s *MockAuthService) {
				s.On("ValidateToken", mock.Anything, "valid-token").
					Return(&models.User{Username: "user1", Role: models.RoleUser, UID: "uid-123"}, models.RoleUser, true, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unauthorized - missing header",
			authHeader:     "",
			setupMocks:     func(*MockAuthService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "missing or invalid authorization header",
		},
		{
			name:           "unauthorized - not a bearer token",
			authHeader:     "Basic dXNlcjpwYXNz",
			setupMocks:     func(*MockAuthService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "missing or invalid authorization header",
		},
		{
			name:       "unauthorized - expired token",
			authHeader: "Bearer expired-token",
			setupMocks: func(s *MockAuthService) {
				s.On("ValidateToken", mock.Anything, "expired-token").
					Return(nil, "", false, errors.New("token is expired")).Once()
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "invalid or expired token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authService := new(MockAuthService)
			tt.setupMocks(authService)

			var gotUID, gotRole any
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUID = r.Context().Value(UserUID)
				gotRole = r.Context().Value(Role)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			JWTMiddleware(authService, newNoopLogger())(testHandler).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, rr.Body.String(), tt.expectedBody)
			}
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "uid-123", gotUID)
				assert.Equal(t, models.RoleUser, gotRole)
			}
			authService.AssertExpectations(t)
		})
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		role           any
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success - admin passes",
			role:           models.RoleAdmin,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "forbidden - regular user",
			role:           models.RoleUser,
			expectedStatus: http.StatusForbidden,
			expectedBody:   "admin role required",
		},
		{
			name:           "unauthorized - role missing in context",
			role:           nil,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/admin/product-status", nil)
			if tt.role != nil {
				req = req.WithContext(context.WithValue(req.Context(), Role, tt.role))
			}
			rr := httptest.NewRecorder()

			AdminOnlyMiddleware(newNoopLogger())(testHandler).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, rr.Body.String(), tt.expectedBody)
			}
			assert.Equal(t, tt.expectedStatus == http.StatusOK, called)
		})
	}
}
