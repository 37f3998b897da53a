// Package main is the HS Architects maintenance CLI. It runs migrations,
// imports the legacy JSON data, reports orphaned projects and bootstraps
// admin-panel users against the configured database.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hsarchitects/internal/auth"
	"hsarchitects/internal/backend"
	"hsarchitects/internal/config"
	"hsarchitects/internal/legacy"
	"hsarchitects/internal/models"
	"hsarchitects/internal/store"
)

const minPasswordLen = 8

type openFunc func(ctx context.Context, cfg *config.Config) (*backend.Backend, error)

func openBackend(ctx context.Context, cfg *config.Config) (*backend.Backend, error) {
	return backend.Open(ctx, cfg, backend.Options{Migrate: true})
}

// cli holds what every subcommand shares once the root command has run.
type cli struct {
	open openFunc
	cfg  *config.Config
	db   *backend.Backend
}

func main() {
	config.LoadDotEnv()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := newRootCmd(openBackend).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(open openFunc) *cobra.Command {
	c := &cli{open: open}

	root := &cobra.Command{
		Use:          "hsctl",
		Short:        "HS Architects maintenance tasks",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := c.open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			c.cfg, c.db = cfg, db
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.db == nil {
				return nil
			}
			return c.db.Close(context.Background())
		},
	}

	root.AddCommand(c.migrateCmd(), c.importCmd(), c.orphansCmd(), c.userCmd())
	return root
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the backend already migrated it.
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", c.db.Driver)
			return nil
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	var dataDir string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import legacy categories, projects and home grid JSON files",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := legacy.NewImporter(c.db.Repos, dataDir).Run(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "categories: %d created, %d skipped\n", rep.Categories.Created, rep.Categories.Skipped)
			fmt.Fprintf(out, "projects:   %d created, %d skipped\n", rep.Projects.Created, rep.Projects.Skipped)
			fmt.Fprintf(out, "home grid:  %d created, %d skipped\n", rep.HomeGrid.Created, rep.HomeGrid.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "directory holding the legacy JSON files")
	return cmd
}

func (c *cli) orphansCmd() *cobra.Command {
	var del bool
	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "List projects whose category no longer exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			find := store.Orphans
			if del {
				find = store.DeleteOrphans
			}
			projects, err := find(cmd.Context(), c.db.Repos)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range projects {
				fmt.Fprintf(out, "%s\t%s\tcategory=%s\n", p.ID, p.Name, p.CategoryID)
			}
			verb := "found"
			if del {
				verb = "deleted"
			}
			fmt.Fprintf(out, "%d orphaned projects %s\n", len(projects), verb)
			return nil
		},
	}
	cmd.Flags().BoolVar(&del, "delete", false, "delete the orphaned projects")
	return cmd
}

func (c *cli) userCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage admin-panel users",
	}

	var username, password, name, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a stored user",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := c.createUser(cmd.Context(), username, password, name, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %q (%s)\n", u.Role, u.Username, u.ID)
			return nil
		},
	}
	create.Flags().StringVar(&username, "username", "", "login name")
	create.Flags().StringVar(&password, "password", "", "initial password (or HSCTL_PASSWORD)")
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&role, "role", string(models.RoleAdmin), "admin or editor")
	create.MarkFlagRequired("username")

	user.AddCommand(create)
	return user
}

func (c *cli) createUser(ctx context.Context, username, password, name, role string) (*models.User, error) {
	username = models.NormalizeUsername(username)
	if password == "" {
		password = os.Getenv("HSCTL_PASSWORD")
	}
	switch {
	case username == "":
		return nil, errors.New("username is required")
	case len(password) < minPasswordLen:
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	case !models.Role(role).Valid():
		return nil, fmt.Errorf("role must be one of: %s %s", models.RoleAdmin, models.RoleEditor)
	}

	existing, err := c.db.Repos.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("username %q already exists", username)
	}

	passwords, err := auth.NewPasswords(c.cfg.PasswordHasher)
	if err != nil {
		return nil, err
	}
	hash, err := passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return c.db.Repos.Users.Create(ctx, &models.User{
		Username:     username,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Role:         models.Role(role),
		IsActive:     true,
	})
}
