// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

// Package store defines the repository contracts for every entity and the
// PostgreSQL implementation of them. Lookups return (nil, nil) when nothing
// matches; writes that target a missing record return ErrNotFound.
package store

import (
	"context"
	"database/sql"
	"errors"

	"hsarchitects/internal/models"
)

var (
	// ErrNotFound is returned by writes whose target record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a write violates a unique key.
	ErrDuplicate = errors.New("duplicate key")
)

// CategoryRepository persists categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id string) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

// ProjectRepository persists projects. An empty categoryID lists everything.
type ProjectRepository interface {
	List(ctx context.Context, categoryID string) ([]models.Project, error)
	FindByID(ctx context.Context, id string) (*models.Project, error)
	FindByNameAndCategory(ctx context.Context, name, categoryID string) (*models.Project, error)
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	Update(ctx context.Context, p *models.Project) (*models.Project, error)
	Delete(ctx context.Context, id string) error
}

// HomeGridRepository persists home-grid slots. Positions are unique.
type HomeGridRepository interface {
	List(ctx context.Context) ([]models.HomeGridSlot, error)
	FindByID(ctx context.Context, id string) (*models.HomeGridSlot, error)
	FindByPosition(ctx context.Context, position int) (*models.HomeGridSlot, error)
	// UpsertAt writes the slot at a position, overwriting whatever is there.
	UpsertAt(ctx context.Context, slot *models.HomeGridSlot) (*models.HomeGridSlot, error)
	Update(ctx context.Context, slot *models.HomeGridSlot) (*models.HomeGridSlot, error)
	// Reorder replaces the whole grid atomically. Stored slots referenced by
	// the assignments move to their new position, placeholders are created and
	// slots left out are removed.
	Reorder(ctx context.Context, assignments []models.GridAssignment) ([]models.HomeGridSlot, error)
}

// ContactRepository persists the singleton contact block.
type ContactRepository interface {
	// Get returns the contact block, storing defaults first if none exists.
	Get(ctx context.Context, defaults models.ContactInfo) (*models.ContactInfo, error)
	Save(ctx context.Context, c *models.ContactInfo) (*models.ContactInfo, error)
}

// MessageRepository persists contact-form submissions.
type MessageRepository interface {
	List(ctx context.Context) ([]models.Message, error)
	FindByID(ctx context.Context, id string) (*models.Message, error)
	Create(ctx context.Context, m *models.Message) (*models.Message, error)
	MarkRead(ctx context.Context, id string) (*models.Message, error)
	Delete(ctx context.Context, id string) error
}

// SettingRepository persists key/value settings.
type SettingRepository interface {
	All(ctx context.Context) ([]models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Set(ctx context.Context, key string, value []byte) (*models.Setting, error)
}

// UserRepository persists admin-panel accounts. Usernames are stored
// normalized.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, u *models.User) (*models.User, error)
	Update(ctx context.Context, u *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) error
	SetTOTPSecret(ctx context.Context, id, secret string) error
	EnableTOTP(ctx context.Context, id string) error
	ResetTOTP(ctx context.Context, id string) error
}

// Repositories bundles one repository per entity for a single backend.
type Repositories struct {
	Categories CategoryRepository
	Projects   ProjectRepository
	HomeGrid   HomeGridRepository
	Contact    ContactRepository
	Messages   MessageRepository
	Settings   SettingRepository
	Users      UserRepository
}

// NewPostgres returns repositories backed by a PostgreSQL pool.
func NewPostgres(db *sql.DB) *Repositories {
	return &Repositories{
		Categories: NewCategoryStore(db),
		Projects:   NewProjectStore(db),
		HomeGrid:   NewHomeGridStore(db),
		Contact:    NewContactStore(db),
		Messages:   NewMessageStore(db),
		Settings:   NewSettingStore(db),
		Users:      NewUserStore(db),
	}
}
