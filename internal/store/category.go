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

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, image, grid_images, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(row scanner) (*models.Category, error) {
	var (
		c    models.Category
		grid []byte
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.Image, &grid, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.GridImages, err = decodeList(grid); err != nil {
		return nil, fmt.Errorf("decode grid images: %w", err)
	}
	return &c, nil
}

// List returns all categories, oldest first.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY created_at ASC, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id string) (*models.Category, error) {
	if !validID(id) {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	grid, err := encodeList(c.GridImages)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description, image, grid_images)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.Image, grid,
	)
	result, err := scanCategory(row)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create category: %w", ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update overwrites every mutable field of a category.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	if !validID(c.ID) {
		return nil, fmt.Errorf("update category: %w", ErrNotFound)
	}
	grid, err := encodeList(c.GridImages)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE categories
		SET name = $1, slug = $2, description = $3, image = $4, grid_images = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.Image, grid, c.ID,
	)
	result, err := scanCategory(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("update category: %w", ErrNotFound)
	case isUniqueViolation(err):
		return nil, fmt.Errorf("update category: %w", ErrDuplicate)
	case err != nil:
		return nil, fmt.Errorf("update category: %w", err)
	}
	return result, nil
}

// Delete removes a category. Projects referencing it are left in place.
func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("delete category: %w", ErrNotFound)
	}
	return deleteByID(ctx, s.db, "categories", id)
}

// deleteByID removes one row from table, reporting ErrNotFound when no row
// matched.
func deleteByID(ctx context.Context, db *sql.DB, table, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", table, ErrNotFound)
	}
	return nil
}
