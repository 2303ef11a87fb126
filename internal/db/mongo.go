package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

const mongoConnectTimeout = 10 * time.Second

type NewMongoClientParams struct {
	URI            string
	AppName        string
	TracingEnabled bool
}

// NewMongoClient connects to mongo. The driver connects lazily, so a
// reachable server is not required here; callers ping when they care.
func NewMongoClient(ctx context.Context, params NewMongoClientParams) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(params.URI).
		SetAppName(params.AppName).
		SetConnectTimeout(mongoConnectTimeout).
		SetServerSelectionTimeout(mongoConnectTimeout)

	if params.TracingEnabled {
		clientOpts.SetMonitor(otelmongo.NewMonitor())
	}

	if err := clientOpts.Validate(); err != nil {
		return nil, fmt.Errorf("validate mongo client options: %w", err)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	return client, nil
}
