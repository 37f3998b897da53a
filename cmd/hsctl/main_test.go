package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hsarchitects/internal/backend"
	"hsarchitects/internal/config"
	"hsarchitects/internal/models"
	"hsarchitects/internal/store"
	"hsarchitects/internal/store/memstore"
)

// run executes hsctl with args against repos and returns its output.
func run(t *testing.T, repos *store.Repositories, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DB_DRIVER", config.DriverMemory)
	t.Setenv("PASSWORD_HASHER", "bcrypt")
	t.Setenv("APP_ENV", "testing")

	open := func(context.Context, *config.Config) (*backend.Backend, error) {
		return &backend.Backend{Driver: config.DriverMemory, Repos: repos}, nil
	}
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	out, err := run(t, memstore.New(), "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "memory schema is up to date") {
		t.Errorf("output = %q", out)
	}
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	data := `[{"id": 1, "name": "Architecture", "slug": "architecture", "description": "d"}]`
	if err := os.WriteFile(filepath.Join(dir, "categories.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	repos := memstore.New()
	out, err := run(t, repos, "import", "--data-dir", dir)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "categories: 1 created, 0 skipped") {
		t.Errorf("output = %q", out)
	}
	if c, _ := repos.Categories.FindBySlug(context.Background(), "architecture"); c == nil {
		t.Error("category not imported")
	}
}

func TestOrphansCommand(t *testing.T) {
	ctx := context.Background()
	repos := memstore.New()
	if _, err := repos.Projects.Create(ctx, &models.Project{Name: "Loft", CategoryID: "gone", Label: "x"}); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, repos, "orphans")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Loft") || !strings.Contains(out, "1 orphaned projects found") {
		t.Errorf("report output = %q", out)
	}
	if left, _ := repos.Projects.List(ctx, ""); len(left) != 1 {
		t.Error("report must not delete")
	}

	out, err = run(t, repos, "orphans", "--delete")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "1 orphaned projects deleted") {
		t.Errorf("delete output = %q", out)
	}
	if left, _ := repos.Projects.List(ctx, ""); len(left) != 0 {
		t.Errorf("projects left = %d", len(left))
	}
}

func TestUserCreateCommand(t *testing.T) {
	repos := memstore.New()

	out, err := run(t, repos, "user", "create", "--username", " Boss ", "--password", "boss-password", "--name", "The Boss")
	if err != nil {
		t.Fatalf("user create: %v", err)
	}
	if !strings.Contains(out, `created admin user "boss"`) {
		t.Errorf("output = %q", out)
	}
	u, _ := repos.Users.FindByUsername(context.Background(), "boss")
	if u == nil || u.Name != "The Boss" || !u.IsActive || u.PasswordHash == "" {
		t.Fatalf("user = %+v", u)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"duplicate", []string{"--username", "BOSS", "--password", "another-pass"}},
		{"short password", []string{"--username", "new", "--password", "short"}},
		{"bad role", []string{"--username", "new", "--password", "long-enough", "--role", "owner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"user", "create"}, tt.args...)
			if _, err := run(t, repos, args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestUserCreatePasswordFromEnv(t *testing.T) {
	repos := memstore.New()
	t.Setenv("HSCTL_PASSWORD", "from-the-env")
	if _, err := run(t, repos, "user", "create", "--username", "ed", "--role", "editor"); err != nil {
		t.Fatal(err)
	}
	u, _ := repos.Users.FindByUsername(context.Background(), "ed")
	if u == nil || u.Role != models.RoleEditor {
		t.Errorf("user = %+v", u)
	}
}
