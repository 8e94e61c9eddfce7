package productstatus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/launchboard/launch-board/internal/models"
	productsrv "github.com/launchboard/launch-board/internal/services/product"
)

// MockService реализует интерфейс productstatus.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Moderate(ctx context.Context, req models.DummyProductStatus) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func TestProductStatusHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	validBody := `{"productId":10,"productName":"Board","status":"approved","userEmail":"owner@example.com","userId":"9ee60b74-0797-4bbe-b80d-82cc65a57a1c"}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное одобрение продукта",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Moderate", mock.Anything, mock.MatchedBy(func(req models.DummyProductStatus) bool {
					return req.ProductID == 10 && req.Status == "approved"
				})).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true}`,
		},
		{
			name:           "нет обязательного поля: сервис не вызывается",
			body:           `{"productId":10,"status":"approved"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field ProductName is a required field`,
		},
		{
			name:           "недопустимый статус",
			body:           strings.Replace(validBody, "approved", "vanished", 1),
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Status has not allowed value`,
		},
		{
			name:           "некорректный uid владельца",
			body:           strings.Replace(validBody, "9ee60b74-0797-4bbe-b80d-82cc65a57a1c", "not-a-uuid", 1),
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field UserUID can contain only uuid`,
		},
		{
			name: "продукт не найден",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Moderate", mock.Anything, mock.Anything).
					Return(fmt.Errorf("product 10: %w", productsrv.ErrProductNotFound)).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"product not found"}`,
		},
		{
			name: "ошибка сервиса",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Moderate", mock.Anything, mock.Anything).Return(errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not update product status"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/admin/product-status", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
