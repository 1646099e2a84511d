package read

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/task-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, principal *models.Principal, id int64) (*models.Task, error) {
	args := m.Called(ctx, principal, id)
	if res := args.Get(0); res != nil {
		return res.(*models.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadTaskHandler(t *testing.T) {
	alice := &models.Principal{ID: 1, Name: "alice"}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное чтение задачи",
			url:  "/tasks/10",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, alice, int64(10)).Return(&models.Task{
					ID: 10, Title: "buy milk", Status: models.TaskStatusToDo, CreatedAt: at, UpdatedAt: at, UserID: 1,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","data":{"id":10,"title":"buy milk","content":null,"status":0,` +
				`"created_at":"2024-01-02T03:04:05Z","updated_at":"2024-01-02T03:04:05Z","user_id":1}}`,
		},
		{
			name: "чужая или отсутствующая задача",
			url:  "/tasks/11",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, alice, int64(11)).Return(nil, models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"not found"}`,
		},
		{
			name:           "некорректный id в URL",
			url:            "/tasks/abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode id from url"}`,
		},
		{
			name: "ошибка сервиса чтения",
			url:  "/tasks/12",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, alice, int64(12)).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(sl.Discard(), mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", strings.TrimPrefix(tt.url, "/tasks/"))
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithPrincipal(ctx, alice))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
