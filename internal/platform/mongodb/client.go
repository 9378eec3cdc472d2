// Package mongodb connects to MongoDB for the document-oriented application store.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"onboard/internal/platform/config"
)

// Client holds a connected driver client and the configured database.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

// New connects and pings MongoDB. Returns nil, nil if the URI is empty.
func New(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	if cfg.URI == "" {
		return nil, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background()) //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Client{client: client, database: client.Database(cfg.Database)}, nil
}

// Database returns the configured database handle.
func (c *Client) Database() *mongo.Database {
	return c.database
}

func (c *Client) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("mongodb not configured")
	}
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}
