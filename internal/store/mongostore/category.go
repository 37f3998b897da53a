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

type categoryDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description"`
	Image       string             `bson:"image"`
	GridImages  []string           `bson:"gridImages"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *categoryDoc) model() models.Category {
	return models.Category{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		Image:       d.Image,
		GridImages:  nonNil(d.GridImages),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// CategoryStore manages categories in MongoDB.
type CategoryStore struct {
	col *mongo.Collection
}

// List returns all categories, oldest first.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	docs, err := findAll[categoryDoc](ctx, s.col, bson.M{}, ascByCreation)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	items := make([]models.Category, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].model())
	}
	return items, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id string) (*models.Category, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

func (s *CategoryStore) findOne(ctx context.Context, filter bson.M) (*models.Category, error) {
	doc, err := findOne[categoryDoc](ctx, s.col, filter)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	c := doc.model()
	return &c, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	ts := now()
	doc := categoryDoc{
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Image:       c.Image,
		GridImages:  nonNil(c.GridImages),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	res, err := s.col.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("create category: %w", store.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	out := doc.model()
	return &out, nil
}

// Update overwrites every mutable field of a category.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	oid, ok := objectID(c.ID)
	if !ok {
		return nil, fmt.Errorf("update category: %w", store.ErrNotFound)
	}
	doc, err := updateOne[categoryDoc](ctx, s.col, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":        c.Name,
		"slug":        c.Slug,
		"description": c.Description,
		"image":       c.Image,
		"gridImages":  nonNil(c.GridImages),
		"updatedAt":   now(),
	}})
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	out := doc.model()
	return &out, nil
}

// Delete removes a category. Projects referencing it are left in place.
func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col, id)
}
