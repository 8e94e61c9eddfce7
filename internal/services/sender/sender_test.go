package services

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/launchboard/launch-board/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func setupHappyTransport(transport *MockTransport, recipient string) {
	mockClient := new(MockSMTPClient)
	mockWriter := new(MockSMTPWriter)

	transport.On("GetSMTPUser").Return("noreply@launchboard.dev")
	transport.On("Connect").Return(mockClient, nil).Once()
	mockClient.On("Mail", "noreply@launchboard.dev").Return(nil).Once()
	mockClient.On("Rcpt", recipient).Return(nil).Once()
	mockClient.On("Data").Return(mockWriter, nil).Once()
	mockWriter.On("Write", mock.AnythingOfType("[]uint8")).Return(100, nil).Once()
	mockWriter.On("Close").Return(nil).Once()
	mockClient.On("Quit").Return(nil).Once()
	mockClient.On("Close").Return(nil).Once()
}

func TestSenderService_SendProductStatusEmail(t *testing.T) {
	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport)
		expectedError bool
	}{
		{
			name: "success - approved product email",
			body: []byte(`{"email":"owner@example.com","username":"owner","product_name":"Board","status":"approved"}`),
			setupMocks: func(transport *MockTransport) {
				setupHappyTransport(transport, "owner@example.com")
			},
			expectedError: false,
		},
		{
			name: "success - rejected product email with admin notes",
			body: []byte(`{"email":"owner@example.com","username":"owner","product_name":"Board","status":"rejected","admin_notes":"duplicate submission"}`),
			setupMocks: func(transport *MockTransport) {
				setupHappyTransport(transport, "owner@example.com")
			},
			expectedError: false,
		},
		{
			name:          "error - unknown product status",
			body:          []byte(`{"email":"owner@example.com","username":"owner","product_name":"Board","status":"pending"}`),
			setupMocks:    func(transport *MockTransport) {},
			expectedError: true,
		},
		{
			name:          "error - invalid message body",
			body:          []byte(`not json`),
			setupMocks:    func(transport *MockTransport) {},
			expectedError: true,
		},
		{
			name: "error - SMTP connect failed",
			body: []byte(`{"email":"owner@example.com","username":"owner","product_name":"Board","status":"approved"}`),
			setupMocks: func(transport *MockTransport) {
				transport.On("GetSMTPUser").Return("noreply@launchboard.dev")
				transport.On("Connect").Return(nil, errors.New("connection refused")).Once()
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			tt.setupMocks(transport)

			service := NewSenderService(newNoopLogger(), transport)
			err := service.SendProductStatusEmail(tt.body)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			transport.AssertExpectations(t)
		})
	}
}

func TestSenderService_SendNewCommentEmail(t *testing.T) {
	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport)
		expectedError bool
	}{
		{
			name: "success - comment notification email",
			body: []byte(`{"email":"owner@example.com","owner_username":"owner","product_name":"Board","author_username":"visitor","content":"Nice launch!"}`),
			setupMocks: func(transport *MockTransport) {
				setupHappyTransport(transport, "owner@example.com")
			},
			expectedError: false,
		},
		{
			name:          "error - invalid message body",
			body:          []byte(`{{{`),
			setupMocks:    func(transport *MockTransport) {},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			tt.setupMocks(transport)

			service := NewSenderService(newNoopLogger(), transport)
			err := service.SendNewCommentEmail(tt.body)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			transport.AssertExpectations(t)
		})
	}
}
