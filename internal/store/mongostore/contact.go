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
	"go.mongodb.org/mongo-driver/mongo/options"

	"hsarchitects/internal/models"
)

type contactDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Phone     string             `bson:"phone"`
	Address   string             `bson:"address"`
	Note      string             `bson:"note"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *contactDoc) model() *models.ContactInfo {
	return &models.ContactInfo{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Phone:     d.Phone,
		Address:   d.Address,
		Note:      d.Note,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// ContactStore manages the single contact document. The collection is
// expected to hold at most one document and no filter is applied.
type ContactStore struct {
	col *mongo.Collection
}

// Get returns the contact document, inserting defaults when there is none.
func (s *ContactStore) Get(ctx context.Context, defaults models.ContactInfo) (*models.ContactInfo, error) {
	ts := now()
	var doc contactDoc
	err := s.col.FindOneAndUpdate(ctx, bson.M{},
		bson.M{"$setOnInsert": bson.M{
			"email":     defaults.Email,
			"phone":     defaults.Phone,
			"address":   defaults.Address,
			"note":      defaults.Note,
			"createdAt": ts,
			"updatedAt": ts,
		}},
		options.FindOneAndUpdate().
			SetSort(bson.D{{Key: "_id", Value: 1}}).
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return doc.model(), nil
}

// Save overwrites the contact document in place.
func (s *ContactStore) Save(ctx context.Context, c *models.ContactInfo) (*models.ContactInfo, error) {
	doc, err := updateOne[contactDoc](ctx, s.col, bson.M{}, bson.M{"$set": bson.M{
		"email":     c.Email,
		"phone":     c.Phone,
		"address":   c.Address,
		"note":      c.Note,
		"updatedAt": now(),
	}})
	if err != nil {
		return nil, fmt.Errorf("save contact: %w", err)
	}
	return doc.model(), nil
}
