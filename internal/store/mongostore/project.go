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

type projectDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	CategoryID  string             `bson:"categoryId"`
	Label       string             `bson:"label"`
	Location    string             `bson:"location"`
	Year        string             `bson:"year"`
	Image       string             `bson:"image"`
	Href        string             `bson:"href"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Images      []string           `bson:"images"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *projectDoc) model() models.Project {
	return models.Project{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		CategoryID:  d.CategoryID,
		Label:       d.Label,
		Location:    d.Location,
		Year:        d.Year,
		Image:       d.Image,
		Href:        d.Href,
		Title:       d.Title,
		Description: d.Description,
		Images:      nonNil(d.Images),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// projectFields returns the mutable fields of p as a $set document.
func projectFields(p *models.Project) bson.M {
	return bson.M{
		"name":        p.Name,
		"categoryId":  p.CategoryID,
		"label":       p.Label,
		"location":    p.Location,
		"year":        p.Year,
		"image":       p.Image,
		"href":        p.Href,
		"title":       p.Title,
		"description": p.Description,
		"images":      nonNil(p.Images),
	}
}

// ProjectStore manages projects in MongoDB.
type ProjectStore struct {
	col *mongo.Collection
}

// List returns projects newest first, optionally filtered by category.
func (s *ProjectStore) List(ctx context.Context, categoryID string) ([]models.Project, error) {
	filter := bson.M{}
	if categoryID != "" {
		filter["categoryId"] = categoryID
	}
	docs, err := findAll[projectDoc](ctx, s.col, filter, descByCreation)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	items := make([]models.Project, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].model())
	}
	return items, nil
}

// FindByID retrieves a project by ID. Returns nil if not found.
func (s *ProjectStore) FindByID(ctx context.Context, id string) (*models.Project, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

// FindByNameAndCategory returns a project with the given name in a category.
func (s *ProjectStore) FindByNameAndCategory(ctx context.Context, name, categoryID string) (*models.Project, error) {
	return s.findOne(ctx, bson.M{"name": name, "categoryId": categoryID})
}

func (s *ProjectStore) findOne(ctx context.Context, filter bson.M) (*models.Project, error) {
	doc, err := findOne[projectDoc](ctx, s.col, filter)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	p := doc.model()
	return &p, nil
}

// Create inserts a new project and returns it.
func (s *ProjectStore) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	ts := now()
	doc := projectDoc{
		Name:        p.Name,
		CategoryID:  p.CategoryID,
		Label:       p.Label,
		Location:    p.Location,
		Year:        p.Year,
		Image:       p.Image,
		Href:        p.Href,
		Title:       p.Title,
		Description: p.Description,
		Images:      nonNil(p.Images),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	out := doc.model()
	return &out, nil
}

// Update overwrites every mutable field of a project.
func (s *ProjectStore) Update(ctx context.Context, p *models.Project) (*models.Project, error) {
	oid, ok := objectID(p.ID)
	if !ok {
		return nil, fmt.Errorf("update project: %w", store.ErrNotFound)
	}
	set := projectFields(p)
	set["updatedAt"] = now()
	doc, err := updateOne[projectDoc](ctx, s.col, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	out := doc.model()
	return &out, nil
}

// Delete removes a project by ID.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col, id)
}
