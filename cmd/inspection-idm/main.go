package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/inspection-idm/pkg/config"
	"github.com/tendant/inspection-idm/pkg/idm"
	"github.com/tendant/inspection-idm/pkg/kvstore"
	"github.com/tendant/inspection-idm/pkg/memstore"
	"github.com/tendant/inspection-idm/pkg/metrics"
	"github.com/tendant/inspection-idm/pkg/notification"
)

func main() {
	defaultEnv := ".env"
	if v := os.Getenv("ENV_FILE"); v != "" {
		defaultEnv = v
	}
	envFile := flag.String("env", defaultEnv, "path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{AddSource: true, Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	ctx := context.Background()

	deliverer, err := newDeliverer(cfg.Email)
	if err != nil {
		slog.Error("Failed to create email deliverer", "error", err)
		os.Exit(1)
	}

	backends, closeBackends, err := newBackends(ctx, cfg, deliverer)
	if err != nil {
		slog.Error("Failed to open backends", "store", cfg.StoreBackend, "kv", cfg.KVBackend, "error", err)
		os.Exit(1)
	}
	defer closeBackends()

	service, err := idm.New(cfg, backends)
	if err != nil {
		slog.Error("Failed to build services", "error", err)
		os.Exit(1)
	}
	service.Start(ctx)

	metrics.Register()

	server := app.DefaultApp()
	app.RegisterHealthzRoutes(server.R)
	server.R.Handle("/metrics", metrics.Handler())
	service.Routes(server.R)

	slog.Info("Inspection IDM configured",
		"prefix", cfg.APIPrefix,
		"store", cfg.StoreBackend,
		"kv", cfg.KVBackend,
		"email", cfg.Email.Delivery,
		"rate_limit", cfg.RateLimit.Enabled)

	server.Run()
}

func newDeliverer(cfg config.EmailConfig) (notification.Deliverer, error) {
	if cfg.Delivery == config.DeliveryLog {
		slog.Warn("Email delivery is log only, messages will not be sent")
		return notification.LogDeliverer{}, nil
	}
	return notification.NewEmailNotifier(notification.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		TLS:      cfg.TLS,
		Username: cfg.Username,
		Password: cfg.Password,
	})
}

func newBackends(ctx context.Context, cfg config.Config, deliverer notification.Deliverer) (idm.Backends, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var kv kvstore.Store
	switch cfg.KVBackend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			closeAll()
			return idm.Backends{}, nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
		}
		kv = kvstore.NewRedisStore(rdb, cfg.Redis.KeyPrefix)
	default:
		mem := kvstore.NewMemoryStore()
		mem.StartCleanup(ctx, time.Minute)
		kv = mem
	}

	if cfg.StoreBackend == config.BackendMemory {
		store := memstore.New(memstore.WithCities(cfg.MemoryCities...))
		slog.Warn("Using in-memory account store, data is lost on restart")
		for _, c := range store.Cities() {
			slog.Info("Seeded city", "city_id", c.ID, "name", c.Name)
		}
		return idm.MemoryBackends(store, kv, deliverer), closeAll, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.ToDatabaseURL())
	if err != nil {
		closeAll()
		return idm.Backends{}, nil, fmt.Errorf("create db pool: %w", err)
	}
	closers = append(closers, pool.Close)
	if err := pool.Ping(ctx); err != nil {
		closeAll()
		return idm.Backends{}, nil, fmt.Errorf("ping database %s:%d/%s: %w", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database, err)
	}

	return idm.PostgresBackends(pool, kv, deliverer), closeAll, nil
}
