package status

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/newsletter-optin/internal/models"
	"github.com/magabrotheeeer/newsletter-optin/internal/storage/repository"
)

// MockService реализует интерфейс status.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Status(ctx context.Context, email string) (*models.SubscriberStatus, error) {
	args := m.Called(ctx, email)
	if res := args.Get(0); res != nil {
		return res.(*models.SubscriberStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestStatusHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		email          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "статус подтвержденного подписчика",
			email: "a@example.com",
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, "a@example.com").Return(&models.SubscriberStatus{
					Email:  "a@example.com",
					Status: models.StatusConfirmed,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"confirmed"`,
		},
		{
			name:  "подписчик не найден",
			email: "ghost@example.com",
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, "ghost@example.com").
					Return(nil, repository.ErrSubscriberNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `subscriber not found`,
		},
		{
			name:  "сбой хранилища",
			email: "a@example.com",
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, "a@example.com").Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not read subscriber status`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/subscribers/status?email="+url.QueryEscape(tt.email), nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
