// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"hsarchitects/internal/models"
)

// SettingStore manages site settings in the database. Values are JSONB.
type SettingStore struct {
	db *sql.DB
}

// NewSettingStore returns a new SettingStore backed by the given database.
func NewSettingStore(db *sql.DB) *SettingStore {
	return &SettingStore{db: db}
}

const settingColumns = `key, value, created_at, updated_at`

func scanSetting(row scanner) (*models.Setting, error) {
	var (
		st    models.Setting
		value []byte
	)
	if err := row.Scan(&st.Key, &value, &st.CreatedAt, &st.UpdatedAt); err != nil {
		return nil, err
	}
	st.Value = json.RawMessage(value)
	return &st, nil
}

// All returns every stored setting ordered by key.
func (s *SettingStore) All(ctx context.Context) ([]models.Setting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+settingColumns+` FROM site_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	items := []models.Setting{}
	for rows.Next() {
		st, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		items = append(items, *st)
	}
	return items, rows.Err()
}

// Get returns a single setting by key, or nil if it was never stored.
func (s *SettingStore) Get(ctx context.Context, key string) (*models.Setting, error) {
	st, err := scanSetting(s.db.QueryRowContext(ctx,
		`SELECT `+settingColumns+` FROM site_settings WHERE key = $1`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}
	return st, nil
}

// Set upserts a single setting. value must be valid JSON.
func (s *SettingStore) Set(ctx context.Context, key string, value []byte) (*models.Setting, error) {
	if !json.Valid(value) {
		return nil, fmt.Errorf("set setting %q: value is not valid JSON", key)
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO site_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING `+settingColumns,
		key, string(value),
	)
	st, err := scanSetting(row)
	if err != nil {
		return nil, fmt.Errorf("set setting: %w", err)
	}
	return st, nil
}
