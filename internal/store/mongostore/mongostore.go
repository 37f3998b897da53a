// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

// Package mongostore implements the store repositories on MongoDB. Collection
// and field names match the documents written by the previous Node.js site,
// so an existing database can be served as-is.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hsarchitects/internal/store"
)

// Collection names.
const (
	colCategories = "categories"
	colProjects   = "projects"
	colHomeGrid   = "homegrids"
	colContact    = "contacts"
	colMessages   = "messages"
	colSettings   = "settings"
	colUsers      = "users"
)

// New returns repositories backed by the given database.
func New(db *mongo.Database) *store.Repositories {
	return &store.Repositories{
		Categories: &CategoryStore{col: db.Collection(colCategories)},
		Projects:   &ProjectStore{col: db.Collection(colProjects)},
		HomeGrid:   &HomeGridStore{col: db.Collection(colHomeGrid)},
		Contact:    &ContactStore{col: db.Collection(colContact)},
		Messages:   &MessageStore{col: db.Collection(colMessages)},
		Settings:   &SettingStore{col: db.Collection(colSettings)},
		Users:      &UserStore{col: db.Collection(colUsers)},
	}
}

// EnsureIndexes creates the unique indexes the repositories rely on.
// Creating an index that already exists is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := []struct {
		collection string
		field      string
	}{
		{colCategories, "slug"},
		{colUsers, "username"},
		{colHomeGrid, "position"},
		{colSettings, "key"},
	}
	for _, u := range unique {
		_, err := db.Collection(u.collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: u.field, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("ensure index %s.%s: %w", u.collection, u.field, err)
		}
	}

	_, err := db.Collection(colProjects).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "categoryId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("ensure index %s.categoryId: %w", colProjects, err)
	}

	slog.Info("mongodb indexes ensured")
	return nil
}

// SupportsTransactions reports whether the server is a replica set member or
// a mongos router, the deployments that accept multi-document transactions.
func SupportsTransactions(ctx context.Context, db *mongo.Database) bool {
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	err := db.RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
	if err != nil {
		return false
	}
	return hello.SetName != "" || hello.Msg == "isdbgrid"
}

var (
	ascByCreation  = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
	descByCreation = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
)

// objectID parses a hex id. Malformed ids can never match a document.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

// now returns the current time at the precision MongoDB stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func findAll[D any](ctx context.Context, col *mongo.Collection, filter any, sort bson.D) ([]D, error) {
	cur, err := col.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// findOne returns nil when no document matches.
func findOne[D any](ctx context.Context, col *mongo.Collection, filter any) (*D, error) {
	var doc D
	err := col.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// updateOne applies update to the document matching filter and returns it
// as modified. Returns store.ErrNotFound when nothing matched.
func updateOne[D any](ctx context.Context, col *mongo.Collection, filter, update any) (*D, error) {
	var doc D
	err := col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, store.ErrDuplicate
	case err != nil:
		return nil, err
	}
	return &doc, nil
}

// deleteByID removes one document by hex id.
func deleteByID(ctx context.Context, col *mongo.Collection, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return fmt.Errorf("delete %s: %w", col.Name(), store.ErrNotFound)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete %s: %w", col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete %s: %w", col.Name(), store.ErrNotFound)
	}
	return nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
