package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout = 10 * time.Second
	// defaultTimeout bounds a single storage or audit operation.
	defaultTimeout = 5 * time.Second
)

// Config holds the settings shared by the browser storage and the session
// audit log.
type Config struct {
	URI      string
	Database string
	// AppName shows up in the server logs and currentOp output.
	AppName     string
	MaxPoolSize uint64
	Timeout     time.Duration
}

// Connect dials cfg.URI, waits for the primary to answer and returns the
// client with the configured database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	wait := cfg.Timeout
	if wait <= 0 {
		wait = connectTimeout
	}
	opts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(wait)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo: ping primary: %w", err)
	}
	return client, client.Database(cfg.Database), nil
}
