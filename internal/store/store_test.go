// store_test.go runs the shared repository suite against PostgreSQL.
// Tests are skipped if the test database is not available.
package store_test

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/pressly/goose/v3"

	"hsarchitects/internal/database"
	"hsarchitects/internal/store"
	"hsarchitects/internal/store/storetest"
)

// testDSN returns the connection string of a dedicated test database; the
// suite truncates every table between subtests.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "hsarchitects")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_TEST_DB", "hsarchitects_test")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens the test database and runs migrations. If the database is
// unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Connect(context.Background(), testDSN())
	if err != nil {
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

func TestPostgresRepositories(t *testing.T) {
	db := testDB(t)

	storetest.Run(t, func(t *testing.T) *store.Repositories {
		_, err := db.Exec(`TRUNCATE categories, projects, home_grid, contact_info, messages, site_settings, users`)
		if err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return store.NewPostgres(db)
	}, storetest.Options{})
}

func TestSeedIdempotent(t *testing.T) {
	db := testDB(t)
	if _, err := db.Exec(`TRUNCATE contact_info, site_settings, users`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	repos := store.NewPostgres(db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := store.Seed(ctx, repos, "seed-hash"); err != nil {
			t.Fatalf("Seed (run %d): %v", i+1, err)
		}
	}

	users, err := repos.Users.List(ctx)
	if err != nil {
		t.Fatalf("List users: %v", err)
	}
	if len(users) != 1 || users[0].Username != store.SeedUsername {
		t.Errorf("users after seed: got %+v, want one %q", users, store.SeedUsername)
	}

	layout, err := repos.Settings.Get(ctx, "projectsLayout")
	if err != nil || layout == nil {
		t.Fatalf("projectsLayout not seeded: %v", err)
	}
}
