package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/services/svc-markets/internal/config"
	"github.com/cenkalti/backoff/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const RegistryCodeIndex = "registryCode_unique"

// searchIndexedFields back the equality filters of the markets search.
var searchIndexedFields = []string{"district", "firstZone", "name", "neighborhood"}

// NewClient connects to the deployment and waits for a primary, retrying with
// exponential backoff while the server is unreachable.
func NewClient(ctx context.Context, cfg config.Database, log logger.Logger) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.ConnectionURI()).
		SetAppName("svc-markets").
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	if cfg.Username != "" {
		opts.SetAuth(options.Credential{
			AuthSource: cfg.AuthSource,
			Username:   cfg.Username,
			Password:   cfg.Password,
		})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("creating mongodb client: %w", err)
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 500 * time.Millisecond
	expBackoff.MaxInterval = cfg.RetryMaxDelay

	attempt := 0
	operation := func() (struct{}, error) {
		attempt++

		err := client.Ping(ctx, readpref.Primary())
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("mongodb not reachable yet")
		}

		return struct{}{}, err
	}

	if _, err := backoff.Retry(
		ctx,
		operation,
		backoff.WithMaxTries(cfg.ConnectRetries+1),
		backoff.WithBackOff(expBackoff),
	); err != nil {
		_ = client.Disconnect(context.Background())

		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	log.Info().
		Str("database", cfg.Database).
		Int("attempts", attempt).
		Msg("connected to mongodb")

	return client, nil
}

// EnsureIndexes creates the unique registry code index and the search indexes.
// Creating an index that already exists with the same definition is a no-op.
func EnsureIndexes(ctx context.Context, collection *mongo.Collection) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "registryCode", Value: 1}},
			Options: options.Index().SetName(RegistryCodeIndex).SetUnique(true),
		},
	}

	for _, field := range searchIndexedFields {
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetName(field + "_idx"),
		})
	}

	if _, err := collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("creating markets indexes: %w", err)
	}

	return nil
}
