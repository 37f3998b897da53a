// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package mongostore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hsarchitects/internal/models"
)

// settingDoc keeps the value as a native BSON value so documents stay
// readable from the mongo shell.
type settingDoc struct {
	Key       string        `bson:"key"`
	Value     bson.RawValue `bson:"value"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d *settingDoc) model() (*models.Setting, error) {
	value, err := valueJSON(d.Value)
	if err != nil {
		return nil, fmt.Errorf("setting %q: %w", d.Key, err)
	}
	return &models.Setting{
		Key:       d.Key,
		Value:     value,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

// valueJSON renders a BSON value as relaxed extended JSON. The value is
// wrapped in a document because extended JSON needs one at the top level.
func valueJSON(v bson.RawValue) (json.RawMessage, error) {
	if v.Type == 0 {
		return json.RawMessage("null"), nil
	}
	b, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: v}}, false, false)
	if err != nil {
		return nil, err
	}
	var wrapped struct {
		V json.RawMessage `json:"v"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.V, nil
}

// SettingStore manages key/value settings in MongoDB.
type SettingStore struct {
	col *mongo.Collection
}

// All returns every stored setting ordered by key.
func (s *SettingStore) All(ctx context.Context) ([]models.Setting, error) {
	docs, err := findAll[settingDoc](ctx, s.col, bson.M{}, bson.D{{Key: "key", Value: 1}})
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	items := make([]models.Setting, 0, len(docs))
	for i := range docs {
		st, err := docs[i].model()
		if err != nil {
			return nil, fmt.Errorf("list settings: %w", err)
		}
		items = append(items, *st)
	}
	return items, nil
}

// Get returns a single setting by key, or nil if it was never stored.
func (s *SettingStore) Get(ctx context.Context, key string) (*models.Setting, error) {
	doc, err := findOne[settingDoc](ctx, s.col, bson.M{"key": key})
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	return doc.model()
}

// Set upserts a single setting. value must be valid JSON.
func (s *SettingStore) Set(ctx context.Context, key string, value []byte) (*models.Setting, error) {
	var decoded any
	if err := json.Unmarshal(value, &decoded); err != nil {
		return nil, fmt.Errorf("set setting %q: %w", key, err)
	}

	ts := now()
	var doc settingDoc
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"key": key},
		bson.M{
			"$set":         bson.M{"value": decoded, "updatedAt": ts},
			"$setOnInsert": bson.M{"createdAt": ts},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("set setting: %w", err)
	}
	return doc.model()
}
