// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"log/slog"

	"hsarchitects/internal/models"
)

// Development seed account. Only created when no users exist.
const (
	SeedUsername = "admin"
	SeedPassword = "admin"
)

// Seed populates an empty store with development data: the contact block,
// the default projects layout and an admin account whose password hash is
// produced by the caller. Running it again is a no-op.
func Seed(ctx context.Context, repos *Repositories, adminHash string) error {
	if _, err := repos.Contact.Get(ctx, models.DefaultContact); err != nil {
		return fmt.Errorf("seed contact: %w", err)
	}

	layout, err := repos.Settings.Get(ctx, models.SettingProjectsLayout)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	if layout == nil {
		def := models.DefaultSetting(models.SettingProjectsLayout)
		if _, err := repos.Settings.Set(ctx, def.Key, def.Value); err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}
	}

	users, err := repos.Users.List(ctx)
	if err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if len(users) > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	_, err = repos.Users.Create(ctx, &models.User{
		Username:     SeedUsername,
		PasswordHash: adminHash,
		Name:         "Admin",
		Role:         models.RoleAdmin,
		IsActive:     true,
	})
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"username", SeedUsername,
		"password", SeedPassword,
	)
	return nil
}
