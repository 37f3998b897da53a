// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"hsarchitects/internal/models"
	"hsarchitects/internal/store"
)

type messageDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Phone     string             `bson:"phone"`
	Message   string             `bson:"message"`
	Read      bool               `bson:"read"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *messageDoc) model() models.Message {
	return models.Message{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Phone:     d.Phone,
		Message:   d.Message,
		Read:      d.Read,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MessageStore manages contact-form messages in MongoDB.
type MessageStore struct {
	col *mongo.Collection
}

// List returns all messages, newest first.
func (s *MessageStore) List(ctx context.Context) ([]models.Message, error) {
	docs, err := findAll[messageDoc](ctx, s.col, bson.M{}, descByCreation)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	items := make([]models.Message, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].model())
	}
	return items, nil
}

// FindByID retrieves a message by ID. Returns nil if not found.
func (s *MessageStore) FindByID(ctx context.Context, id string) (*models.Message, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	doc, err := findOne[messageDoc](ctx, s.col, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("find message: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	m := doc.model()
	return &m, nil
}

// Create stores a new, unread message.
func (s *MessageStore) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	ts := now()
	doc := messageDoc{
		Email:     m.Email,
		Phone:     m.Phone,
		Message:   m.Message,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	out := doc.model()
	return &out, nil
}

// MarkRead flags a message as read; already-read messages are returned
// unchanged.
func (s *MessageStore) MarkRead(ctx context.Context, id string) (*models.Message, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, fmt.Errorf("mark message read: %w", store.ErrNotFound)
	}
	doc, err := updateOne[messageDoc](ctx, s.col, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"read": true, "updatedAt": now()}})
	if err != nil {
		return nil, fmt.Errorf("mark message read: %w", err)
	}
	m := doc.model()
	return &m, nil
}

// Delete removes a message by ID.
func (s *MessageStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col, id)
}
