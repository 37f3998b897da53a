package mongostore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"hsarchitects/internal/database"
	"hsarchitects/internal/store"
	"hsarchitects/internal/store/mongostore"
	"hsarchitects/internal/store/storetest"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// TestMongoRepositories runs the shared suite against a throwaway database.
// It is skipped when MongoDB is not reachable; the reorder checks are
// skipped when the server is not a replica set member.
func TestMongoRepositories(t *testing.T) {
	conn := database.NewMongoConnector(envOr("MONGODB_URI", "mongodb://localhost:27017"), "hsarchitects_test")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err := conn.Connect(ctx)
	if err != nil {
		t.Skipf("skipping integration test: MongoDB not reachable: %v", err)
	}
	t.Cleanup(func() {
		db.Drop(context.Background())
		conn.Close(context.Background())
	})

	opts := storetest.Options{SkipReorder: !mongostore.SupportsTransactions(context.Background(), db)}

	storetest.Run(t, func(t *testing.T) *store.Repositories {
		ctx := context.Background()
		if err := db.Drop(ctx); err != nil {
			t.Fatalf("drop test database: %v", err)
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			t.Fatalf("EnsureIndexes: %v", err)
		}
		return mongostore.New(db)
	}, opts)
}

// Documents written by the previous site have no TOTP fields and carry a
// mongoose version key; they must still decode.
func TestLegacyUserDocument(t *testing.T) {
	conn := database.NewMongoConnector(envOr("MONGODB_URI", "mongodb://localhost:27017"), "hsarchitects_test_legacy")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err := conn.Connect(ctx)
	if err != nil {
		t.Skipf("skipping integration test: MongoDB not reachable: %v", err)
	}
	t.Cleanup(func() {
		db.Drop(context.Background())
		conn.Close(context.Background())
	})

	_, err = db.Collection("users").InsertOne(context.Background(), bson.M{
		"username": "editor1",
		"password": "-5a3c1b2",
		"name":     "Editor",
		"role":     "editor",
		"isActive": true,
		"__v":      0,
	})
	if err != nil {
		t.Fatalf("insert legacy user: %v", err)
	}

	repos := mongostore.New(db)
	u, err := repos.Users.FindByUsername(context.Background(), "Editor1")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if u == nil {
		t.Fatal("expected legacy user to be found")
	}
	if u.PasswordHash != "-5a3c1b2" || u.TOTPEnabled || u.TOTPSecret != nil {
		t.Errorf("legacy user decoded as %+v", u)
	}
}
