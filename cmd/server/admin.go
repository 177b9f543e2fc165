package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/config"
	mongoInfra "github.com/fastygo/tasktracker/internal/infrastructure/mongo"
	pgInfra "github.com/fastygo/tasktracker/internal/infrastructure/postgres"
	"github.com/fastygo/tasktracker/internal/services/lifecycle"
	profileUC "github.com/fastygo/tasktracker/usecase/profile"
)

// migrateStore prepares the configured store: SQL migrations for postgres,
// indexes for mongo and buckets for bolt.
func migrateStore(ctx context.Context, cmd *cli.Command) error {
	cfg, zapLogger, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		return pgInfra.RunMigrations(cfg.Database, cfg.Migrations.Path, zapLogger)
	case config.StoreDriverMongo:
		client, _, err := mongoInfra.Connect(ctx, cfg.Mongo, zapLogger)
		if err != nil {
			return err
		}
		return client.Disconnect(context.Background())
	default:
		manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
		if _, err := openStores(ctx, cfg, manager, zapLogger); err != nil {
			return err
		}
		return manager.Shutdown(context.Background())
	}
}

func createUser(ctx context.Context, cmd *cli.Command) error {
	cfg, zapLogger, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	defer func() {
		if err := manager.Shutdown(context.Background()); err != nil {
			zapLogger.Error("shutdown error", zap.Error(err))
		}
	}()

	st, err := openStores(ctx, cfg, manager, zapLogger)
	if err != nil {
		return err
	}

	user, err := profileUC.New(st.users, nil, zapLogger).Register(ctx, &domain.User{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Role:     cmd.String("role"),
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(user)
}
