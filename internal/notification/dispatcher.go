package notification

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"imamportal_backend/internal/email"
	"imamportal_backend/platform/config"
	"imamportal_backend/platform/logger"
)

// RenderedMessage is one fully rendered notification with its audience,
// ready for transport.
type RenderedMessage struct {
	TemplateName string
	Subject      string
	Body         string
	Recipients   []string
}

// Dispatcher fans rendered messages out to their recipients over email.
// Sends run concurrently under a bounded semaphore and each send has its own
// timeout, so one slow or failing recipient never delays or cancels the
// others.
type Dispatcher struct {
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger
	sem    *semaphore.Weighted
}

const defaultDispatchConcurrency = 16

// NewDispatcher creates a dispatcher. The concurrency bound and per-send
// timeout come from configuration; a bound below 1 would make every Acquire
// block forever, so it falls back to the default.
func NewDispatcher(sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Dispatcher {
	concurrency := cfg.GetNotifyDispatchConcurrency()
	if concurrency < 1 {
		concurrency = defaultDispatchConcurrency
	}
	return &Dispatcher{
		sender: sender,
		cfg:    cfg,
		log:    log,
		sem:    semaphore.NewWeighted(int64(concurrency)),
	}
}

// Dispatch sends every message to every one of its recipients and returns
// one result per (message, recipient) pair. It blocks until all sends have
// finished. An empty aggregate recipient set performs no transport calls.
func (d *Dispatcher) Dispatch(ctx context.Context, msgs []RenderedMessage) []DeliveryResult {
	type sendJob struct {
		msg       *RenderedMessage
		recipient string
	}

	var jobs []sendJob
	for i := range msgs {
		for _, to := range msgs[i].Recipients {
			jobs = append(jobs, sendJob{msg: &msgs[i], recipient: to})
		}
	}
	if len(jobs) == 0 {
		d.log.Warn("notification_no_recipients_resolved")
		return nil
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make([]DeliveryResult, 0, len(jobs))
	)

	record := func(res DeliveryResult) {
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
	}

	for _, job := range jobs {
		if err := d.sem.Acquire(ctx, 1); err != nil {
			record(DeliveryResult{
				Recipient:    job.recipient,
				TemplateName: job.msg.TemplateName,
				Success:      false,
				Err:          err,
			})
			continue
		}

		wg.Add(1)
		go func(job sendJob) {
			defer wg.Done()
			defer d.sem.Release(1)
			record(d.send(ctx, job.msg, job.recipient))
		}(job)
	}

	wg.Wait()
	return results
}

func (d *Dispatcher) send(ctx context.Context, msg *RenderedMessage, to string) DeliveryResult {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.GetNotifySendTimeout())
	defer cancel()

	_, err := d.sender.Send(sendCtx, to, msg.Subject, msg.Body)
	if err != nil {
		d.log.Warn("notification_send_failed",
			slog.String("recipient", to),
			slog.String("template", msg.TemplateName),
			slog.String("error", err.Error()),
		)
	}
	return DeliveryResult{
		Recipient:    to,
		TemplateName: msg.TemplateName,
		Success:      err == nil,
		Err:          err,
	}
}
