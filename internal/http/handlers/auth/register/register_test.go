package register

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// MockService реализует интерфейс register.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, name, password string) (*models.User, error) {
	args := m.Called(ctx, name, password)
	if res := args.Get(0); res != nil {
		return res.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		successStatus  int
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:          "успешная регистрация",
			body:          `{"name":"alice","password":"pw1"}`,
			successStatus: http.StatusOK,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "alice", "pw1").
					Return(&models.User{ID: 1, Name: "alice", PasswordHash: "$2a$secret"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"id":1,"name":"alice","is_admin":false}}`,
		},
		{
			name:          "создание через /users/create",
			body:          `{"name":"bob","password":"pw2"}`,
			successStatus: http.StatusCreated,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "bob", "pw2").Return(&models.User{ID: 2, Name: "bob"}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"status":"OK","data":{"id":2,"name":"bob","is_admin":false}}`,
		},
		{
			name:          "имя занято",
			body:          `{"name":"alice","password":"pw2"}`,
			successStatus: http.StatusOK,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "alice", "pw2").Return(nil, models.ErrConflict)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"already exists"}`,
		},
		{
			name:           "некорректный JSON",
			body:           `not a json`,
			successStatus:  http.StatusOK,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "ошибка валидации",
			body:           `{"name":""}`,
			successStatus:  http.StatusOK,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Name is a required field, field Password is a required field"}`,
		},
		{
			name:          "ошибка хранилища",
			body:          `{"name":"carol","password":"pw"}`,
			successStatus: http.StatusOK,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "carol", "pw").Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(sl.Discard(), mockService, tt.successStatus)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-id"))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			assert.NotContains(t, w.Body.String(), "password")
			mockService.AssertExpectations(t)
		})
	}
}
