package monitor

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	bolt "go.etcd.io/bbolt"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/fastygo/tasktracker/internal/infrastructure/boltdb"
)

func PostgresProbe(pool *pgxpool.Pool) Probe {
	return Probe{Name: "postgresql", Check: func(ctx context.Context) error {
		return pool.Ping(ctx)
	}}
}

func RedisProbe(client *redislib.Client) Probe {
	return Probe{Name: "redis", Check: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

func MongoProbe(client *mongodrv.Client) Probe {
	return Probe{Name: "mongodb", Check: func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	}}
}

func BoltProbe(db *bolt.DB) Probe {
	return Probe{Name: "bolt", Check: func(context.Context) error {
		return boltdb.Ping(db)
	}}
}
