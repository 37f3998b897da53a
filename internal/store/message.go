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

// MessageStore manages contact-form messages in the database.
type MessageStore struct {
	db *sql.DB
}

// NewMessageStore returns a new MessageStore.
func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

const messageColumns = `id, email, phone, message, read, created_at, updated_at`

func scanMessage(row scanner) (*models.Message, error) {
	var m models.Message
	err := row.Scan(&m.ID, &m.Email, &m.Phone, &m.Message, &m.Read, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns all messages, newest first.
func (s *MessageStore) List(ctx context.Context) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+messageColumns+` FROM messages ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

// FindByID retrieves a message by ID. Returns nil if not found.
func (s *MessageStore) FindByID(ctx context.Context, id string) (*models.Message, error) {
	if !validID(id) {
		return nil, nil
	}
	m, err := scanMessage(s.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find message by id: %w", err)
	}
	return m, nil
}

// Create stores a new, unread message.
func (s *MessageStore) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (email, phone, message)
		VALUES ($1, $2, $3)
		RETURNING `+messageColumns,
		m.Email, m.Phone, m.Message,
	)
	result, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return result, nil
}

// MarkRead flags a message as read. Marking an already-read message is a
// no-op that still returns it.
func (s *MessageStore) MarkRead(ctx context.Context, id string) (*models.Message, error) {
	if !validID(id) {
		return nil, fmt.Errorf("mark message read: %w", ErrNotFound)
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE messages SET read = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING `+messageColumns, id)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mark message read: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("mark message read: %w", err)
	}
	return m, nil
}

// Delete removes a message by ID.
func (s *MessageStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("delete message: %w", ErrNotFound)
	}
	return deleteByID(ctx, s.db, "messages", id)
}
