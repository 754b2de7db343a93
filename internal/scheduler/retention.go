package scheduler

import (
	"context"
	"time"

	"imamportal_backend/platform/config"
	"imamportal_backend/platform/logger"
)

const defaultPurgeInterval = 24 * time.Hour

// RetentionEnqueuer periodically enqueues a delivery log purge task.
type RetentionEnqueuer struct {
	client    *Client
	retention time.Duration
	interval  time.Duration
	log       *logger.Logger
}

func NewRetentionEnqueuer(client *Client, cfg config.SchedulerConfig, log *logger.Logger) *RetentionEnqueuer {
	return &RetentionEnqueuer{
		client:    client,
		retention: cfg.GetDeliveryLogRetention(),
		interval:  defaultPurgeInterval,
		log:       log,
	}
}

func (e *RetentionEnqueuer) Run(ctx context.Context) {
	if e == nil || e.client == nil || e.retention <= 0 {
		return
	}

	e.enqueue(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.enqueue(ctx)
		}
	}
}

func (e *RetentionEnqueuer) enqueue(ctx context.Context) {
	if err := e.client.EnqueueDeliveryLogPurge(ctx, e.retention); err != nil {
		e.log.Warn("failed to enqueue delivery log purge", "error", err)
	}
}
