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
	"hsarchitects/internal/store"
)

type gridDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Position           int                `bson:"position"`
	Image              string             `bson:"image"`
	CloudinaryPublicID *string            `bson:"cloudinaryPublicId"`
	CreatedAt          time.Time          `bson:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
}

func (d *gridDoc) model() models.HomeGridSlot {
	return models.HomeGridSlot{
		ID:                 d.ID.Hex(),
		Position:           d.Position,
		Image:              d.Image,
		CloudinaryPublicID: d.CloudinaryPublicID,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// HomeGridStore manages home-grid slots in MongoDB.
type HomeGridStore struct {
	col *mongo.Collection
}

// List returns all slots ordered by position.
func (s *HomeGridStore) List(ctx context.Context) ([]models.HomeGridSlot, error) {
	docs, err := findAll[gridDoc](ctx, s.col, bson.M{}, bson.D{{Key: "position", Value: 1}})
	if err != nil {
		return nil, fmt.Errorf("list home grid: %w", err)
	}
	items := make([]models.HomeGridSlot, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].model())
	}
	return items, nil
}

// FindByID retrieves a slot by ID. Returns nil if not found.
func (s *HomeGridStore) FindByID(ctx context.Context, id string) (*models.HomeGridSlot, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

// FindByPosition retrieves the slot at a position. Returns nil if empty.
func (s *HomeGridStore) FindByPosition(ctx context.Context, position int) (*models.HomeGridSlot, error) {
	return s.findOne(ctx, bson.M{"position": position})
}

func (s *HomeGridStore) findOne(ctx context.Context, filter bson.M) (*models.HomeGridSlot, error) {
	doc, err := findOne[gridDoc](ctx, s.col, filter)
	if err != nil {
		return nil, fmt.Errorf("find grid slot: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	g := doc.model()
	return &g, nil
}

// UpsertAt stores the slot at its position, replacing the image of any slot
// already there.
func (s *HomeGridStore) UpsertAt(ctx context.Context, slot *models.HomeGridSlot) (*models.HomeGridSlot, error) {
	ts := now()
	var doc gridDoc
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"position": slot.Position},
		bson.M{
			"$set": bson.M{
				"image":              slot.Image,
				"cloudinaryPublicId": slot.CloudinaryPublicID,
				"updatedAt":          ts,
			},
			"$setOnInsert": bson.M{"createdAt": ts},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("upsert grid slot: %w", err)
	}
	g := doc.model()
	return &g, nil
}

// Update overwrites a stored slot. Moving onto an occupied position returns
// store.ErrDuplicate.
func (s *HomeGridStore) Update(ctx context.Context, slot *models.HomeGridSlot) (*models.HomeGridSlot, error) {
	oid, ok := objectID(slot.ID)
	if !ok {
		return nil, fmt.Errorf("update grid slot: %w", store.ErrNotFound)
	}
	doc, err := updateOne[gridDoc](ctx, s.col, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"position":           slot.Position,
		"image":              slot.Image,
		"cloudinaryPublicId": slot.CloudinaryPublicID,
		"updatedAt":          now(),
	}})
	if err != nil {
		return nil, fmt.Errorf("update grid slot: %w", err)
	}
	g := doc.model()
	return &g, nil
}

// Reorder rewrites the grid inside a multi-document transaction, which needs
// a replica set. Positions are negated first so the unique index holds at
// every step; slots still negative at the end were not listed and are
// deleted.
func (s *HomeGridStore) Reorder(ctx context.Context, assignments []models.GridAssignment) ([]models.HomeGridSlot, error) {
	sess, err := s.col.Database().Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("reorder start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		release := bson.A{bson.M{"$set": bson.M{"position": bson.M{"$multiply": bson.A{"$position", -1}}}}}
		if _, err := s.col.UpdateMany(sc, bson.M{}, release); err != nil {
			return nil, fmt.Errorf("release positions: %w", err)
		}

		ts := now()
		for _, a := range assignments {
			switch ref := a.Ref.(type) {
			case models.ExistingSlot:
				oid, ok := objectID(ref.ID)
				if !ok {
					return nil, fmt.Errorf("slot %s: %w", ref.ID, store.ErrNotFound)
				}
				res, err := s.col.UpdateOne(sc, bson.M{"_id": oid}, bson.M{"$set": reorderSet(a, ts)})
				if err != nil {
					return nil, fmt.Errorf("slot %s: %w", ref.ID, err)
				}
				if res.MatchedCount == 0 {
					return nil, fmt.Errorf("slot %s: %w", ref.ID, store.ErrNotFound)
				}
			case models.EmptySlot:
				var slot models.HomeGridSlot
				a.Apply(&slot)
				_, err := s.col.InsertOne(sc, gridDoc{
					Position:           slot.Position,
					Image:              slot.Image,
					CloudinaryPublicID: slot.CloudinaryPublicID,
					CreatedAt:          ts,
					UpdatedAt:          ts,
				})
				if err != nil {
					return nil, fmt.Errorf("insert at %d: %w", a.Position, err)
				}
			default:
				return nil, fmt.Errorf("unknown slot reference %T", a.Ref)
			}
		}

		if _, err := s.col.DeleteMany(sc, bson.M{"position": bson.M{"$lte": 0}}); err != nil {
			return nil, fmt.Errorf("remove leftovers: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("reorder home grid: %w", err)
	}
	return s.List(ctx)
}

// reorderSet is the $set document moving a stored slot. Fields the
// assignment did not send are left alone.
func reorderSet(a models.GridAssignment, ts time.Time) bson.M {
	set := bson.M{"position": a.Position, "updatedAt": ts}
	if a.Image != nil {
		set["image"] = *a.Image
	}
	if a.PublicIDSet {
		set["cloudinaryPublicId"] = a.CloudinaryPublicID
	}
	return set
}
