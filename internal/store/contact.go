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

// ContactStore manages the singleton contact row. The table's singleton
// column is unique and always TRUE, so at most one row can exist.
type ContactStore struct {
	db *sql.DB
}

// NewContactStore returns a new ContactStore.
func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

const contactColumns = `id, email, phone, address, note, created_at, updated_at`

func scanContact(row scanner) (*models.ContactInfo, error) {
	var c models.ContactInfo
	err := row.Scan(&c.ID, &c.Email, &c.Phone, &c.Address, &c.Note, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Get returns the contact row, inserting defaults when the table is empty.
func (s *ContactStore) Get(ctx context.Context, defaults models.ContactInfo) (*models.ContactInfo, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_info (email, phone, address, note)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (singleton) DO NOTHING`,
		defaults.Email, defaults.Phone, defaults.Address, defaults.Note,
	)
	if err != nil {
		return nil, fmt.Errorf("seed contact: %w", err)
	}

	c, err := scanContact(s.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contact_info LIMIT 1`))
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

// Save overwrites the contact row in place.
func (s *ContactStore) Save(ctx context.Context, c *models.ContactInfo) (*models.ContactInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE contact_info
		SET email = $1, phone = $2, address = $3, note = $4, updated_at = NOW()
		WHERE singleton
		RETURNING `+contactColumns,
		c.Email, c.Phone, c.Address, c.Note,
	)
	result, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("save contact: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("save contact: %w", err)
	}
	return result, nil
}
