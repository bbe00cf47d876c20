package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"dealerbridge_backend/internal/audit"
	"dealerbridge_backend/internal/crm"
	"dealerbridge_backend/internal/events"
	"dealerbridge_backend/internal/monitor"
	"dealerbridge_backend/internal/notify"
	"dealerbridge_backend/internal/scheduler"
	"dealerbridge_backend/platform/config"
	"dealerbridge_backend/platform/db"
	"dealerbridge_backend/platform/kv"
	"dealerbridge_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting drift monitor", "env", cfg.Env, "cron", cfg.MonitorCron)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := kv.NewClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer rdb.Close()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = db.NewPool(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			panic("failed to connect to database: " + err.Error())
		}
		defer pool.Close()
	} else {
		log.Warn("DATABASE_URL not configured; audit trail disabled")
	}

	eventBus := events.NewInMemoryBus(log)

	// Drift events fan out to operators and the audit trail.
	notifier := notify.NewNotifier(cfg, log)
	notifier.RegisterHandlers(eventBus)
	_ = audit.NewModule(pool, eventBus, log)

	crmFactory := crm.NewFactory(cfg)
	monitorModule := monitor.NewModule(rdb, crmFactory, cfg.GetMonitorConfigPath(), eventBus, log)

	worker, err := scheduler.NewWorker(cfg, monitorModule.Checker(), log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		periodic.Run(ctx)
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, stopping drift monitor")
	wg.Wait()
}
