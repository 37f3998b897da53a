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

// userDoc keeps the hash under "password", the field older documents use.
type userDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Username    string             `bson:"username"`
	Password    string             `bson:"password"`
	Name        string             `bson:"name"`
	Role        string             `bson:"role"`
	IsActive    bool               `bson:"isActive"`
	TOTPSecret  *string            `bson:"totpSecret"`
	TOTPEnabled bool               `bson:"totpEnabled"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *userDoc) model() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.Password,
		Name:         d.Name,
		Role:         models.Role(d.Role),
		IsActive:     d.IsActive,
		TOTPSecret:   d.TOTPSecret,
		TOTPEnabled:  d.TOTPEnabled,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// UserStore manages admin-panel users in MongoDB.
type UserStore struct {
	col *mongo.Collection
}

// List returns all users, newest first.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	docs, err := findAll[userDoc](ctx, s.col, bson.M{}, descByCreation)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	items := make([]models.User, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].model())
	}
	return items, nil
}

// FindByID retrieves a user by ID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

// FindByUsername retrieves a user by username, case-insensitively.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username": models.NormalizeUsername(username)})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	doc, err := findOne[userDoc](ctx, s.col, filter)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	u := doc.model()
	return &u, nil
}

// Create inserts a new user with an already-hashed password.
func (s *UserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	ts := now()
	doc := userDoc{
		Username:  models.NormalizeUsername(u.Username),
		Password:  u.PasswordHash,
		Name:      u.Name,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	res, err := s.col.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("create user: %w", store.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	out := doc.model()
	return &out, nil
}

// Update overwrites the profile fields and password hash of a user.
func (s *UserStore) Update(ctx context.Context, u *models.User) (*models.User, error) {
	oid, ok := objectID(u.ID)
	if !ok {
		return nil, fmt.Errorf("update user: %w", store.ErrNotFound)
	}
	doc, err := updateOne[userDoc](ctx, s.col, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"password":  u.PasswordHash,
		"name":      u.Name,
		"role":      string(u.Role),
		"isActive":  u.IsActive,
		"updatedAt": now(),
	}})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	out := doc.model()
	return &out, nil
}

// SetTOTPSecret saves the TOTP secret for a user (during 2FA setup).
func (s *UserStore) SetTOTPSecret(ctx context.Context, id, secret string) error {
	return s.set(ctx, "set totp secret", id, bson.M{"totpSecret": secret, "totpEnabled": false})
}

// EnableTOTP marks 2FA as active for a user.
func (s *UserStore) EnableTOTP(ctx context.Context, id string) error {
	return s.set(ctx, "enable totp", id, bson.M{"totpEnabled": true})
}

// ResetTOTP clears the TOTP secret and disables 2FA for a user.
func (s *UserStore) ResetTOTP(ctx context.Context, id string) error {
	return s.set(ctx, "reset totp", id, bson.M{"totpSecret": nil, "totpEnabled": false})
}

func (s *UserStore) set(ctx context.Context, op, id string, fields bson.M) error {
	oid, ok := objectID(id)
	if !ok {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	fields["updatedAt"] = now()
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return nil
}

// Delete removes a user by ID.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col, id)
}
