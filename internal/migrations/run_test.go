package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
)

func getTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("to_do_list"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return db, cleanup
}

func getMigrationsPath(t *testing.T) string {
	projectRoot, err := filepath.Abs("../..")
	require.NoError(t, err)

	return filepath.Join(projectRoot, "migrations")
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)
	`, name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestRunMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	db, cleanup := getTestDB(t)
	defer cleanup()

	err := Run(db, getMigrationsPath(t), sl.Discard())
	require.NoError(t, err)

	require.True(t, tableExists(t, db, "users"), "Table 'users' should exist")
	require.True(t, tableExists(t, db, "tasks"), "Table 'tasks' should exist")

	var exists bool
	err = db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM pg_indexes
			WHERE schemaname = 'public'
			AND tablename = 'tasks'
			AND indexname = 'idx_tasks_user_id'
		)
	`).Scan(&exists)
	require.NoError(t, err)
	require.True(t, exists, "Index should exist")

	_, err = db.Exec(`INSERT INTO users (name, password_hash) VALUES ('alice', 'x')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (name, password_hash) VALUES ('alice', 'y')`)
	require.Error(t, err, "user name must be unique")

	_, err = db.Exec(`INSERT INTO tasks (title, status, user_id) SELECT 't', 99, id FROM users WHERE name = 'alice'`)
	require.Error(t, err, "status outside 0..2 must be rejected")
}

func TestMigrationIdempotency(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	db, cleanup := getTestDB(t)
	defer cleanup()

	migrationsPath := getMigrationsPath(t)

	require.NoError(t, Run(db, migrationsPath, sl.Discard()))
	require.NoError(t, Run(db, migrationsPath, sl.Discard()), "Running migrations twice should not fail")
}
