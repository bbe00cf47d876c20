package scheduler

import (
	"context"
	"fmt"

	"dealerbridge_backend/platform/config"
	"dealerbridge_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic enqueues the drift check task on a cron schedule. Entries support
// standard cron syntax plus the "@every <duration>" shorthand.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	scheduler := asynq.NewScheduler(opt, nil)

	task, err := NewDriftCheckTask(DriftCheckPayload{TriggeredBy: "schedule"})
	if err != nil {
		return nil, err
	}

	cron := cfg.GetMonitorCron()
	entryID, err := scheduler.Register(cron, task, asynq.Queue(queue))
	if err != nil {
		return nil, fmt.Errorf("register drift check schedule %q: %w", cron, err)
	}
	log.Info("drift check scheduled", "cron", cron, "entry_id", entryID)

	return &Periodic{scheduler: scheduler, log: log}, nil
}

func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}

	go func() {
		<-ctx.Done()
		p.scheduler.Shutdown()
	}()

	if err := p.scheduler.Run(); err != nil {
		p.log.Error("periodic scheduler stopped", "error", err)
	}
}
