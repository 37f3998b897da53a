// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hsarchitects/internal/models"
)

// ProjectStore manages projects in the database.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore returns a new ProjectStore.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

const projectColumns = `id, name, category_id, label, location, year, image, href,
	title, description, images, created_at, updated_at`

func scanProject(row scanner) (*models.Project, error) {
	var (
		p      models.Project
		images []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.CategoryID, &p.Label, &p.Location, &p.Year,
		&p.Image, &p.Href, &p.Title, &p.Description, &images,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Images, err = decodeList(images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	return &p, nil
}

// List returns projects newest first, optionally filtered by category.
func (s *ProjectStore) List(ctx context.Context, categoryID string) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var args []any
	if categoryID != "" {
		query += ` WHERE category_id = $1`
		args = append(args, categoryID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a project by ID. Returns nil if not found.
func (s *ProjectStore) FindByID(ctx context.Context, id string) (*models.Project, error) {
	if !validID(id) {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project by id: %w", err)
	}
	return p, nil
}

// FindByNameAndCategory returns the first project with the given name in a
// category. Returns nil if not found.
func (s *ProjectStore) FindByNameAndCategory(ctx context.Context, name, categoryID string) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE name = $1 AND category_id = $2
		ORDER BY created_at LIMIT 1`, name, categoryID)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project by name: %w", err)
	}
	return p, nil
}

// Create inserts a new project and returns it.
func (s *ProjectStore) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	images, err := encodeList(p.Images)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO projects (name, category_id, label, location, year, image, href, title, description, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+projectColumns,
		p.Name, p.CategoryID, p.Label, p.Location, p.Year,
		p.Image, p.Href, p.Title, p.Description, images,
	)
	result, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return result, nil
}

// Update overwrites every mutable field of a project.
func (s *ProjectStore) Update(ctx context.Context, p *models.Project) (*models.Project, error) {
	if !validID(p.ID) {
		return nil, fmt.Errorf("update project: %w", ErrNotFound)
	}
	images, err := encodeList(p.Images)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE projects
		SET name = $1, category_id = $2, label = $3, location = $4, year = $5,
		    image = $6, href = $7, title = $8, description = $9, images = $10,
		    updated_at = NOW()
		WHERE id = $11
		RETURNING `+projectColumns,
		p.Name, p.CategoryID, p.Label, p.Location, p.Year,
		p.Image, p.Href, p.Title, p.Description, images, p.ID,
	)
	result, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update project: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return result, nil
}

// Delete removes a project by ID.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("delete project: %w", ErrNotFound)
	}
	return deleteByID(ctx, s.db, "projects", id)
}
