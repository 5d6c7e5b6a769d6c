package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"

	"blogapi/internal/config"
)

var mongoConnect = mongo.Connect

const defaultPingTimeout = 5 * time.Second

// MongoClientOptions builds driver options from configuration, including the tracing monitor.
func MongoClientOptions(c config.MongoConfig) (*options.ClientOptions, error) {
	if c.URI == "" {
		return nil, fmt.Errorf("invalid mongo config: uri is required")
	}
	if c.Database == "" || c.Collection == "" {
		return nil, fmt.Errorf("invalid mongo config: database and collection are required")
	}

	opts := options.Client().
		ApplyURI(c.URI).
		SetMonitor(otelmongo.NewMonitor())
	if c.Timeout > 0 {
		opts.SetConnectTimeout(c.Timeout).SetServerSelectionTimeout(c.Timeout)
	}
	if c.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(c.MaxPoolSize)
	}
	if c.Direct {
		opts.SetDirect(true)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mongo config: %w", err)
	}
	return opts, nil
}

// NewMongo connects to MongoDB and verifies the primary is reachable.
// The caller owns the client and must Disconnect it on shutdown.
func NewMongo(ctx context.Context, c config.MongoConfig) (*mongo.Client, error) {
	opts, err := MongoClientOptions(c)
	if err != nil {
		return nil, err
	}

	client, err := mongoConnect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, nil
}
