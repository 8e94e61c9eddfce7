package create

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/launchboard/launch-board/internal/http/middlewarectx"
	"github.com/launchboard/launch-board/internal/models"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, authorUID, authorUsername string, req models.DummyComment) (*models.Comment, error) {
	args := m.Called(ctx, authorUID, authorUsername, req)
	if res := args.Get(0); res != nil {
		return res.(*models.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCreateCommentHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	validBody := `{"content":"great launch","productId":5,"weekId":"2026-W35"}`

	tests := []struct {
		name           string
		body           string
		userUID        string
		username       string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное создание комментария",
			body:     validBody,
			userUID:  "9ee60b74-0797-4bbe-b80d-82cc65a57a1c",
			username: "alice",
			setupMock: func(m *MockService) {
				created := &models.Comment{
					ID:        3,
					Content:   "great launch",
					AuthorUID: "9ee60b74-0797-4bbe-b80d-82cc65a57a1c",
					ProductID: 5,
					WeekID:    "2026-W35",
				}
				m.On("Create", mock.Anything, "9ee60b74-0797-4bbe-b80d-82cc65a57a1c", "alice",
					models.DummyComment{Content: "great launch", ProductID: 5, WeekID: "2026-W35"}).
					Return(created, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"success":true`,
		},
		{
			name:           "без авторизации комментарий не создается",
			body:           validBody,
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:           "пустой комментарий",
			body:           `{"productId":5,"weekId":"2026-W35"}`,
			userUID:        "9ee60b74-0797-4bbe-b80d-82cc65a57a1c",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Content is a required field`,
		},
		{
			name:     "ошибка сервиса",
			body:     validBody,
			userUID:  "9ee60b74-0797-4bbe-b80d-82cc65a57a1c",
			username: "alice",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not create comment"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(tt.body))
			ctx := req.Context()
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
			}
			if tt.username != "" {
				ctx = context.WithValue(ctx, middlewarectx.User, tt.username)
			}
			req = req.WithContext(ctx)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
