// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoConnectTimeout = 10 * time.Second

// MongoConnector dials MongoDB once per process and hands out the same
// database handle on every later call.
type MongoConnector struct {
	uri    string
	dbName string

	mu     sync.Mutex
	client *mongo.Client
}

// NewMongoConnector returns a connector for the given URI and database name.
// No connection is made until Connect is called.
func NewMongoConnector(uri, dbName string) *MongoConnector {
	return &MongoConnector{uri: uri, dbName: dbName}
}

// Connect returns the shared database handle, dialing and pinging the
// server on first use. A failed attempt leaves the connector unconnected so
// the next call dials again.
func (c *MongoConnector) Connect(ctx context.Context) (*mongo.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client.Database(c.dbName), nil
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	c.client = client
	slog.Info("database connected", "driver", "mongodb", "db", c.dbName)
	return client.Database(c.dbName), nil
}

// Close disconnects the shared client, if any.
func (c *MongoConnector) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	return err
}
