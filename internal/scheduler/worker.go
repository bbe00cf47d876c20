package scheduler

import (
	"context"
	"fmt"

	"dealerbridge_backend/internal/monitor"
	"dealerbridge_backend/platform/config"
	"dealerbridge_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// DriftChecker runs one drift check pass over the watch list.
type DriftChecker interface {
	Check(ctx context.Context) (monitor.CheckResponse, error)
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	checker DriftChecker
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, checker DriftChecker, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		checker: checker,
		log:     log,
	}

	mux.HandleFunc(TaskDriftCheck, w.handleDriftCheck)

	return w, nil
}

func (w *Worker) handleDriftCheck(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDriftCheckPayload(task)
	if err != nil {
		return err
	}

	resp, err := w.checker.Check(ctx)
	if err != nil {
		return err
	}

	w.log.Info("drift check completed",
		"triggered_by", payload.TriggeredBy,
		"checked", resp.Checked,
		"changes", len(resp.Changes),
		"errors", len(resp.Errors))
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
