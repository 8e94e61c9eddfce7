package submit

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

// MockService реализует интерфейс submit.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Submit(ctx context.Context, ownerUID string, req models.DummyProduct) (int, error) {
	args := m.Called(ctx, ownerUID, req)
	return args.Int(0), args.Error(1)
}

func TestSubmitHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	validBody := `{"name":"Board","tagline":"ship weekly","description":"weekly launches","website_url":"https://board.dev","week_id":"2026-W35"}`

	tests := []struct {
		name           string
		body           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешная подача продукта",
			body:    validBody,
			userUID: "9ee60b74-0797-4bbe-b80d-82cc65a57a1c",
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, "9ee60b74-0797-4bbe-b80d-82cc65a57a1c",
					mock.MatchedBy(func(req models.DummyProduct) bool {
						return req.Name == "Board" && req.WeekID == "2026-W35"
					})).Return(15, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"id":15`,
		},
		{
			name:           "без авторизации заявка не создается",
			body:           validBody,
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:           "нет обязательного поля",
			body:           `{"name":"Board"}`,
			userUID:        "9ee60b74-0797-4bbe-b80d-82cc65a57a1c",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Tagline is a required field`,
		},
		{
			name:    "ошибка сервиса",
			body:    validBody,
			userUID: "9ee60b74-0797-4bbe-b80d-82cc65a57a1c",
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, mock.Anything, mock.Anything).
					Return(0, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not submit product"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(tt.body))
			if tt.userUID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
