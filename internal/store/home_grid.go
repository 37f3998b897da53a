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

// HomeGridStore manages home-grid slots in the database.
type HomeGridStore struct {
	db *sql.DB
}

// NewHomeGridStore returns a new HomeGridStore.
func NewHomeGridStore(db *sql.DB) *HomeGridStore {
	return &HomeGridStore{db: db}
}

const gridColumns = `id, position, image, cloudinary_public_id, created_at, updated_at`

func scanGridSlot(row scanner) (*models.HomeGridSlot, error) {
	var g models.HomeGridSlot
	err := row.Scan(&g.ID, &g.Position, &g.Image, &g.CloudinaryPublicID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// List returns all slots ordered by position.
func (s *HomeGridStore) List(ctx context.Context) ([]models.HomeGridSlot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+gridColumns+` FROM home_grid ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list home grid: %w", err)
	}
	defer rows.Close()

	items := []models.HomeGridSlot{}
	for rows.Next() {
		g, err := scanGridSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grid slot: %w", err)
		}
		items = append(items, *g)
	}
	return items, rows.Err()
}

// FindByID retrieves a slot by ID. Returns nil if not found.
func (s *HomeGridStore) FindByID(ctx context.Context, id string) (*models.HomeGridSlot, error) {
	if !validID(id) {
		return nil, nil
	}
	return s.findOne(ctx, `id = $1`, id)
}

// FindByPosition retrieves the slot at a position. Returns nil if empty.
func (s *HomeGridStore) FindByPosition(ctx context.Context, position int) (*models.HomeGridSlot, error) {
	return s.findOne(ctx, `position = $1`, position)
}

func (s *HomeGridStore) findOne(ctx context.Context, where string, arg any) (*models.HomeGridSlot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gridColumns+` FROM home_grid WHERE `+where, arg)
	g, err := scanGridSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find grid slot: %w", err)
	}
	return g, nil
}

// UpsertAt stores the slot at its position, replacing the image of any slot
// already there.
func (s *HomeGridStore) UpsertAt(ctx context.Context, slot *models.HomeGridSlot) (*models.HomeGridSlot, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO home_grid (position, image, cloudinary_public_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (position)
		DO UPDATE SET image = EXCLUDED.image,
		              cloudinary_public_id = EXCLUDED.cloudinary_public_id,
		              updated_at = NOW()
		RETURNING `+gridColumns,
		slot.Position, slot.Image, slot.CloudinaryPublicID,
	)
	g, err := scanGridSlot(row)
	if err != nil {
		return nil, fmt.Errorf("upsert grid slot: %w", err)
	}
	return g, nil
}

// Update overwrites a stored slot. Moving onto an occupied position returns
// ErrDuplicate.
func (s *HomeGridStore) Update(ctx context.Context, slot *models.HomeGridSlot) (*models.HomeGridSlot, error) {
	if !validID(slot.ID) {
		return nil, fmt.Errorf("update grid slot: %w", ErrNotFound)
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE home_grid
		SET position = $1, image = $2, cloudinary_public_id = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+gridColumns,
		slot.Position, slot.Image, slot.CloudinaryPublicID, slot.ID,
	)
	g, err := scanGridSlot(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("update grid slot: %w", ErrNotFound)
	case isUniqueViolation(err):
		return nil, fmt.Errorf("update grid slot: %w", ErrDuplicate)
	case err != nil:
		return nil, fmt.Errorf("update grid slot: %w", err)
	}
	return g, nil
}

// Reorder rewrites the grid in one transaction. Current positions are
// negated first so the unique index never sees two slots on one position
// mid-way; whatever is still negative at the end was not listed and is
// deleted.
func (s *HomeGridStore) Reorder(ctx context.Context, assignments []models.GridAssignment) ([]models.HomeGridSlot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("reorder begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE home_grid SET position = -position`); err != nil {
		return nil, fmt.Errorf("reorder release positions: %w", err)
	}

	move, err := tx.PrepareContext(ctx, `
		UPDATE home_grid
		SET position = $1,
		    image = COALESCE($2, image),
		    cloudinary_public_id = CASE WHEN $3 THEN $4 ELSE cloudinary_public_id END,
		    updated_at = NOW()
		WHERE id = $5`)
	if err != nil {
		return nil, fmt.Errorf("reorder prepare: %w", err)
	}
	defer move.Close()

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO home_grid (position, image, cloudinary_public_id) VALUES ($1, $2, $3)`)
	if err != nil {
		return nil, fmt.Errorf("reorder prepare: %w", err)
	}
	defer insert.Close()

	for _, a := range assignments {
		switch ref := a.Ref.(type) {
		case models.ExistingSlot:
			if !validID(ref.ID) {
				return nil, fmt.Errorf("reorder slot %s: %w", ref.ID, ErrNotFound)
			}
			res, err := move.ExecContext(ctx, a.Position, a.Image, a.PublicIDSet, a.CloudinaryPublicID, ref.ID)
			if err != nil {
				return nil, fmt.Errorf("reorder slot %s: %w", ref.ID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return nil, fmt.Errorf("reorder slot %s: %w", ref.ID, ErrNotFound)
			}
		case models.EmptySlot:
			var slot models.HomeGridSlot
			a.Apply(&slot)
			if _, err := insert.ExecContext(ctx, slot.Position, slot.Image, slot.CloudinaryPublicID); err != nil {
				return nil, fmt.Errorf("reorder insert at %d: %w", a.Position, err)
			}
		default:
			return nil, fmt.Errorf("reorder: unknown slot reference %T", a.Ref)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM home_grid WHERE position <= 0`); err != nil {
		return nil, fmt.Errorf("reorder remove leftovers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("reorder commit: %w", err)
	}
	return s.List(ctx)
}
