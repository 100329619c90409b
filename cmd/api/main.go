package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/usermanagement/api/controllers"
	"github.com/angelmondragon/usermanagement/api/routes"
	"github.com/angelmondragon/usermanagement/internal/users"
	"github.com/angelmondragon/usermanagement/pkg/config"
	"github.com/angelmondragon/usermanagement/pkg/db"
	"github.com/angelmondragon/usermanagement/pkg/instance"
	"github.com/angelmondragon/usermanagement/pkg/logger"
	"github.com/angelmondragon/usermanagement/pkg/metrics"
	"github.com/angelmondragon/usermanagement/pkg/migrate"
	"github.com/angelmondragon/usermanagement/pkg/mongo"
	"github.com/angelmondragon/usermanagement/pkg/redis"
)

type closer func(ctx context.Context) error

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []closer
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i](shutdownCtx))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	repo, storePinger, closeStore, err := openStore(ctx, cfg, logg)
	if err != nil {
		return err
	}
	closers = append(closers, closeStore)

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		closers = append(closers, func(context.Context) error { return redisClient.Close() })
	} else {
		logg.Warn(ctx, "redis not configured; registration rate limiting and idempotency disabled")
	}

	userService, err := users.NewService(users.ServiceParams{
		Repo:                repo,
		Policy:              users.RegistrationPolicy{AcceptedCountry: cfg.Registration.AcceptedCountry},
		DefaultNotification: cfg.Registration.DefaultNotification,
		Metrics:             metrics.NewRegistrationMetrics(registry),
		Logger:              logg,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"backend":  cfg.Store.Backend,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, registry, storePinger, redisClient, userService),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		logg.Info(logCtx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore connects the configured backend and returns the repository along
// with its health probe and shutdown hook.
func openStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (users.Repository, controllers.Pinger, closer, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMongo:
		client, err := mongo.New(ctx, cfg.Mongo, logg)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := users.NewMongoRepository(client.Collection(cfg.Mongo.Collection))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, nil, nil, multierr.Append(err, client.Close(ctx))
		}
		return repo, client, client.Close, nil
	default:
		client, err := db.New(ctx, cfg.Store.Backend, cfg.DB, logg)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
			return nil, nil, nil, multierr.Append(err, client.Close())
		}
		return users.NewGormRepository(client.DB()), client, func(context.Context) error { return client.Close() }, nil
	}
}
