package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/internal/config"
	"github.com/fastygo/tasktracker/internal/infrastructure/boltdb"
	mongoInfra "github.com/fastygo/tasktracker/internal/infrastructure/mongo"
	"github.com/fastygo/tasktracker/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/tasktracker/internal/infrastructure/postgres"
	"github.com/fastygo/tasktracker/internal/services/lifecycle"
	"github.com/fastygo/tasktracker/repository"
	boltRepo "github.com/fastygo/tasktracker/repository/bolt"
	mongoRepo "github.com/fastygo/tasktracker/repository/mongo"
	"github.com/fastygo/tasktracker/repository/postgres"
)

// stores bundles the repositories of the configured driver.
type stores struct {
	todos repository.TodoRepository
	users repository.UserRepository
	probe monitor.Probe
}

// openStores connects the configured driver and registers its shutdown hook.
func openStores(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		if cfg.Migrations.Enabled {
			if err := pgInfra.RunMigrations(cfg.Database, cfg.Migrations.Path, logger); err != nil {
				return nil, fmt.Errorf("migrations failed: %w", err)
			}
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		manager.Register("postgres", pgInfra.ShutdownHook(pool, logger))
		return &stores{
			todos: postgres.NewTodoRepository(pool),
			users: postgres.NewUserRepository(pool),
			probe: monitor.PostgresProbe(pool),
		}, nil

	case config.StoreDriverMongo:
		client, db, err := mongoInfra.Connect(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		manager.Register("mongo", client.Disconnect)
		return &stores{
			todos: mongoRepo.NewTodoRepository(db),
			users: mongoRepo.NewUserRepository(db),
			probe: monitor.MongoProbe(client),
		}, nil

	case config.StoreDriverBolt:
		db, err := boltdb.Open(cfg.Bolt.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt store: %w", err)
		}
		manager.RegisterCloser("bolt", db)
		logger.Info("opened bolt store", zap.String("path", cfg.Bolt.Path))
		return &stores{
			todos: boltRepo.NewTodoRepository(db),
			users: boltRepo.NewUserRepository(db),
			probe: monitor.BoltProbe(db),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
