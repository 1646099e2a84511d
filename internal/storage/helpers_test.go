package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/migrations"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("to_do_list"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, dsn)
	require.NoError(t, err, "failed to create storage")
	t.Cleanup(func() { _ = storage.Close() })

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath, sl.Discard()))

	return storage
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя
func (f *TestDataFactory) CreateUser(t *testing.T, name string) *models.User {
	u, err := f.storage.CreateUser(context.Background(), models.User{Name: name, PasswordHash: "hashedpassword"})
	require.NoError(t, err)
	return u
}

// CreateTask создает тестовую задачу пользователя
func (f *TestDataFactory) CreateTask(t *testing.T, ownerID int64, title string) *models.Task {
	now := time.Now().UTC().Truncate(time.Microsecond)
	task, err := f.storage.CreateTask(context.Background(), models.Task{
		Title:     title,
		Status:    models.TaskStatusToDo,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    ownerID,
	})
	require.NoError(t, err)
	return task
}

// countRows возвращает количество строк таблицы по условию
func (f *TestDataFactory) countRows(t *testing.T, query string, args ...any) int {
	var count int
	require.NoError(t, f.storage.DB.QueryRow(query, args...).Scan(&count))
	return count
}
