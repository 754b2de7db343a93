package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"imamportal_backend/internal/notification/deliverylog"
	"imamportal_backend/platform/config"
	"imamportal_backend/platform/logger"
)

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	deliveries *deliverylog.Repository
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*Worker, error) {
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
		server:     server,
		mux:        mux,
		deliveries: deliverylog.NewRepository(pool),
		log:        log,
	}

	mux.HandleFunc(TaskDeliveryLogPurge, w.handleDeliveryLogPurge)

	return w, nil
}

func (w *Worker) handleDeliveryLogPurge(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDeliveryLogPurgePayload(task)
	if err != nil {
		return err
	}
	if payload.Retention <= 0 {
		return nil
	}

	deleted, err := w.deliveries.PurgeOlderThan(ctx, payload.Retention)
	if err != nil {
		return err
	}
	if deleted > 0 {
		w.log.Info("delivery log purge removed entries", "deleted", deleted)
	}
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
