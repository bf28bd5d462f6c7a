// Command storefront runs the session gateway in front of the grocery API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/freshcart/storefront/internal/api"
	"github.com/freshcart/storefront/internal/api/handler"
	"github.com/freshcart/storefront/internal/api/metrics"
	"github.com/freshcart/storefront/internal/api/middleware"
	"github.com/freshcart/storefront/internal/core/ports"
	"github.com/freshcart/storefront/internal/core/service"
	"github.com/freshcart/storefront/internal/infrastructure/config"
	"github.com/freshcart/storefront/internal/infrastructure/db/mongo"
	"github.com/freshcart/storefront/internal/infrastructure/db/redis"
	"github.com/freshcart/storefront/internal/infrastructure/queue"
	"github.com/freshcart/storefront/internal/infrastructure/remote"
	"github.com/freshcart/storefront/internal/infrastructure/storage/memory"
	"github.com/freshcart/storefront/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "storefront"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := map[string]handler.Pinger{}

	var mongoDB *mongodriver.Database
	if cfg.NeedsMongo() {
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			AppName:     "storefront",
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		mongoDB = db
		health["mongo"] = handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		})
	}

	provider, closeStorage, err := openStorage(ctx, cfg, mongoDB)
	if err != nil {
		return err
	}
	defer closeStorage()
	health["storage"] = provider

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(reg)

	var auditor ports.SessionAuditor = queue.NopAuditor{}
	if cfg.Audit.Enabled {
		repo := mongo.NewEventRepository(mongoDB)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		dispatcher := queue.NewDispatcher(cfg.Audit.Workers, service.NewAuditService(repo, logger.Component(log, "audit")), logger.Component(log, "audit"))
		// workers outlive the signal so Close can drain queued events
		dispatcher.Start(context.Background())
		defer dispatcher.Close()
		auditor = dispatcher
	}

	devices := service.NewDevices(provider, auditor, recorder, cfg.AdminPrefix, logger.Component(log, "session"))
	client := remote.New(
		cfg.Remote.BaseURL,
		cfg.Remote.Timeout,
		service.DeviceAuthorizer{AdminPrefix: devices.AdminPrefix()},
		recorder,
		logger.Component(log, "remote"),
	)

	pricing := cfg.PricingPolicy()
	e := api.NewRouter(api.Dependencies{
		Devices:  devices,
		Auth:     service.NewAuthService(client, logger.Component(log, "auth")),
		Cart:     service.NewCartService(client, pricing, devices.AdminPrefix(), logger.Component(log, "cart")),
		Orders:   service.NewOrderService(client, client, client, pricing, devices.AdminPrefix(), logger.Component(log, "orders")),
		Admin:    service.NewAdminService(client, logger.Component(log, "admin")),
		Remote:   client,
		Health:   health,
		Registry: reg,
		Cookie:   middleware.DeviceConfig{Secure: cfg.Storage.CookieSecure, MaxAge: cfg.Storage.TTL},
		Log:      log,
	})

	figure.NewFigure("storefront", "cybermedium", true).Print()
	fmt.Println()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("env", cfg.Env).
			Str("storage", cfg.Storage.Driver).
			Str("remote", cfg.Remote.BaseURL).
			Bool("audit", cfg.Audit.Enabled).
			Msg("storefront listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("storefront stopped")
	return nil
}

// openStorage builds the browser storage backend named by the config. The
// returned func releases it.
func openStorage(ctx context.Context, cfg *config.Config, db *mongodriver.Database) (ports.StorageProvider, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverRedis:
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return nil, nil, err
		}
		return redis.NewStorageProvider(client, cfg.Storage.TTL), func() { _ = client.Close() }, nil
	case config.DriverMongo:
		p := mongo.NewStorageProvider(db, cfg.Storage.TTL)
		if err := p.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		return p, func() {}, nil
	default:
		return memory.New(), func() {}, nil
	}
}
