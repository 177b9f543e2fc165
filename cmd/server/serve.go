package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/tasktracker/api/handler"
	"github.com/fastygo/tasktracker/internal/config"
	"github.com/fastygo/tasktracker/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/tasktracker/internal/infrastructure/redis"
	"github.com/fastygo/tasktracker/internal/middleware"
	"github.com/fastygo/tasktracker/internal/router"
	"github.com/fastygo/tasktracker/internal/services/lifecycle"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	"github.com/fastygo/tasktracker/pkg/logger"
	redisRepo "github.com/fastygo/tasktracker/repository/redis"
	authUC "github.com/fastygo/tasktracker/usecase/auth"
	profileUC "github.com/fastygo/tasktracker/usecase/profile"
	todoUC "github.com/fastygo/tasktracker/usecase/todo"
)

func bootstrap(cmd *cli.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFile(cmd.String("env-file"))
	if err != nil {
		return nil, nil, err
	}
	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger error: %w", err)
	}
	return cfg, zapLogger, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, zapLogger, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	if err := cfg.JWT.Validate(); err != nil {
		return fmt.Errorf("invalid jwt configuration: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)
	defer func() {
		if err := manager.Shutdown(context.Background()); err != nil {
			zapLogger.Error("graceful shutdown error", zap.Error(err))
		}
	}()

	st, err := openStores(appCtx, cfg, manager, zapLogger)
	if err != nil {
		return err
	}

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	manager.RegisterCloser("redis", redisClient)

	mon := monitor.New(cfg.Monitor.Interval, zapLogger, st.probe, monitor.RedisProbe(redisClient))
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop(ctx)
		return nil
	})

	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)
	tokens := authUC.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer)

	authUseCase := authUC.New(st.users, sessionRepo, tokens, zapLogger)
	profileUseCase := profileUC.New(st.users, sessionRepo, zapLogger)
	todoUseCase := todoUC.New(st.todos, st.users, todoUC.Config{
		DefaultLimit:  cfg.Todo.DefaultLimit,
		MaxLimit:      cfg.Todo.MaxLimit,
		ExportMaxRows: cfg.Todo.ExportMaxRows,
	}, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.SessionTTL),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Todo:    apiHandler.NewTodoHandler(todoUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(authUseCase, cfg.Context.RequestTimeout, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("store", cfg.Store.Driver))
		serverErr <- server.ListenAndServe(cfg.Address())
	}()

	manager.Register("http_server", func(context.Context) error {
		return server.Shutdown()
	})

	select {
	case <-appCtx.Done():
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server crashed: %w", err)
		}
		return nil
	}
}
