package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealerbridge_backend/internal/audit"
	"dealerbridge_backend/internal/configstore"
	"dealerbridge_backend/internal/crm"
	"dealerbridge_backend/internal/events"
	apphttp "dealerbridge_backend/internal/http"
	"dealerbridge_backend/internal/http/router"
	"dealerbridge_backend/internal/leads"
	"dealerbridge_backend/internal/monitor"
	"dealerbridge_backend/internal/notify"
	"dealerbridge_backend/internal/pipelines"
	"dealerbridge_backend/internal/properties"
	"dealerbridge_backend/platform/config"
	"dealerbridge_backend/platform/db"
	"dealerbridge_backend/platform/kv"
	"dealerbridge_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var rdb *redis.Client
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		client, err := kv.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		rdb = client
		return nil
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer rdb.Close()
	log.Info("redis connection established")

	// The audit trail needs Postgres; everything else runs without it.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, cfg, "migrations")
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")

		if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
			p, err := db.NewPool(ctx, cfg)
			if err != nil {
				return err
			}
			pool = p
			return nil
		}); err != nil {
			log.Error("failed to connect to database", "error", err)
			panic("failed to connect to database: " + err.Error())
		}
		defer pool.Close()
		log.Info("database connection established")
	} else {
		log.Warn("DATABASE_URL not configured; audit trail disabled")
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Per-token CRM client factory shared by every tenant-scoped call
	crmFactory := crm.NewFactory(cfg)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	configModule := configstore.NewModule(rdb, log)
	store := configModule.Store()

	propertiesModule := properties.NewModule(store, crmFactory, rdb, cfg.GetComposerStrategy(), eventBus, log)
	pipelinesModule := pipelines.NewModule(store, crmFactory)
	leadsModule := leads.NewModule(store, crmFactory, propertiesModule, eventBus, log)
	monitorModule := monitor.NewModule(rdb, crmFactory, cfg.GetMonitorConfigPath(), eventBus, log)
	auditModule := audit.NewModule(pool, eventBus, log)

	// Notifier subscribes to domain events (not HTTP-facing)
	notifier := notify.NewNotifier(cfg, log)
	notifier.RegisterHandlers(eventBus)
	if !notifier.Enabled() {
		log.Warn("no alert channel configured; drift notifications disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health{rdb: rdb, db: db.NewPoolAdapter(pool)},
		EventBus: eventBus,
		Modules: []apphttp.Module{
			configModule,
			leadsModule,
			pipelinesModule,
			propertiesModule,
			monitorModule,
			auditModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// health reports readiness from the shared Redis store, the one dependency
// every request path needs, plus Postgres when the audit trail is enabled.
// The pool adapter treats a nil pool as healthy.
type health struct {
	rdb *redis.Client
	db  *db.PoolAdapter
}

func (h health) Ping(ctx context.Context) error {
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		return err
	}
	return h.db.Ping(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
