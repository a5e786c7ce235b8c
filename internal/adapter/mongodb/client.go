package mongodb

import (
	"context"
	"fmt"

	"github.com/sm8ta/mongo_user_service/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect opens the process-wide client and checks the primary is reachable.
// The caller owns the client and must Disconnect it on shutdown.
func Connect(ctx context.Context, cfg *config.Mongo) (*mongo.Client, error) {
	const op = "mongodb.Connect"

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return client, nil
}

// Pinger adapts a client to the readiness probe.
func Pinger(client *mongo.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}
