package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/internal/config"
)

// Connect creates a MongoDB client, verifies connectivity and ensures the
// indexes the todo store relies on.
func Connect(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*mongodrv.Client, *mongodrv.Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := options.Client().ApplyURI(cfg.URL)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	}
	client, err := mongodrv.Connect(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.Database)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	logger.Info("connected to mongodb", zap.String("db", cfg.Database))
	return client, db, nil
}

// EnsureIndexes creates the visibility, tag and username indexes.
func EnsureIndexes(ctx context.Context, db *mongodrv.Database) error {
	_, err := db.Collection("todos").Indexes().CreateMany(ctx, []mongodrv.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "mentionedUsers", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "dueDate", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create todo indexes: %w", err)
	}

	_, err = db.Collection("users").Indexes().CreateOne(ctx, mongodrv.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.D{{Key: "username", Value: bson.D{{Key: "$gt", Value: ""}}}}),
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}
