package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"imamportal_backend/internal/events"
	"imamportal_backend/platform/logger"
)

// Hook is the single entry point domain services use to request notification
// dispatch after committing a write. Notify publishes onto the event bus and
// returns immediately; all resolution, rendering, and delivery happens on the
// bus worker pool. No failure inside the hook ever reaches the caller.
type Hook struct {
	templates  TemplateSource
	resolver   *Resolver
	extractor  *Extractor
	recipients *RecipientResolver
	renderer   *Renderer
	dispatcher *Dispatcher
	deliveries DeliveryWriter
	bus        events.Bus
	log        *logger.Logger
}

// NewHook wires the dispatch pipeline and subscribes it to record-committed
// events on the bus.
func NewHook(
	templates TemplateSource,
	resolver *Resolver,
	extractor *Extractor,
	recipients *RecipientResolver,
	renderer *Renderer,
	dispatcher *Dispatcher,
	deliveries DeliveryWriter,
	bus events.Bus,
	log *logger.Logger,
) *Hook {
	h := &Hook{
		templates:  templates,
		resolver:   resolver,
		extractor:  extractor,
		recipients: recipients,
		renderer:   renderer,
		dispatcher: dispatcher,
		deliveries: deliveries,
		bus:        bus,
		log:        log,
	}
	bus.Subscribe(events.RecordCommittedName, events.HandlerFunc(h.handle))
	return h
}

// Notify requests notification dispatch for one committed write. It is
// fire-and-forget: it returns before any resolution or delivery happens and
// reports nothing back. Callers must invoke it only after the write is
// durably committed, with record as the post-commit row and, for updates,
// previous as the pre-write row. An explicit recipient list bypasses
// slot-based recipient resolution for every template dispatched.
func (h *Hook) Notify(table string, action Action, record, previous Record, explicit ...string) {
	h.bus.Publish(context.Background(), events.RecordCommitted{
		BaseEvent:          events.NewBaseEvent(),
		TableName:          table,
		Action:             string(action),
		Record:             record,
		Previous:           previous,
		ExplicitRecipients: explicit,
	})
}

func (h *Hook) handle(ctx context.Context, ev events.Event) error {
	rc, ok := ev.(events.RecordCommitted)
	if !ok {
		return nil
	}
	nctx := Context{
		TableName:          rc.TableName,
		Action:             Action(rc.Action),
		Record:             Record(rc.Record),
		Previous:           Record(rc.Previous),
		ExplicitRecipients: rc.ExplicitRecipients,
	}
	nctx.StatusID = deriveStatusTransition(nctx.Record, nctx.Previous)
	h.process(ctx, nctx)
	return nil
}

// deriveStatusTransition reports the new status id when the write changed
// it. A create has no previous row and therefore no transition.
func deriveStatusTransition(record, previous Record) *int {
	if previous == nil {
		return nil
	}
	next, ok := fieldInt(record, "status_id")
	if !ok {
		return nil
	}
	if prev, ok := fieldInt(previous, "status_id"); ok && prev == next {
		return nil
	}
	return &next
}

func (h *Hook) process(ctx context.Context, nctx Context) {
	selected := h.selectTemplates(ctx, nctx)
	if len(selected) == 0 {
		h.log.Info("notification_no_active_template",
			slog.String("table", nctx.TableName),
			slog.String("action", string(nctx.Action)),
		)
		return
	}

	vars := h.extractor.Extract(ctx, nctx.TableName, nctx.Record, nctx.Previous)

	fanOut := nctx.TableName == TableMessages && len(nctx.ExplicitRecipients) == 0
	var fanOutAddrs []string
	if fanOut {
		fanOutAddrs = h.fanOutAddresses(ctx, nctx)
	}

	var msgs []RenderedMessage
	for i := range selected {
		t := &selected[i]
		subject, body := h.renderer.Render(t, vars)

		switch {
		case len(nctx.ExplicitRecipients) > 0:
			msgs = append(msgs, RenderedMessage{
				TemplateName: t.Name,
				Subject:      subject,
				Body:         body,
				Recipients:   nctx.ExplicitRecipients,
			})
		case fanOut:
			// Each participant gets its own message so one delivery cannot
			// block or fail the others.
			for _, addr := range fanOutAddrs {
				msgs = append(msgs, RenderedMessage{
					TemplateName: t.Name,
					Subject:      subject,
					Body:         body,
					Recipients:   []string{addr},
				})
			}
		default:
			msgs = append(msgs, RenderedMessage{
				TemplateName: t.Name,
				Subject:      subject,
				Body:         body,
				Recipients:   h.recipients.Resolve(ctx, t.RecipientType, nctx),
			})
		}
	}

	results := h.dispatcher.Dispatch(ctx, msgs)
	if len(results) == 0 {
		return
	}

	sent, failed := 0, 0
	for _, res := range results {
		if res.Success {
			sent++
		} else {
			failed++
		}
	}
	h.log.DeliverySummary(nctx.TableName, string(nctx.Action), sent, failed)

	if h.deliveries != nil {
		if err := h.deliveries.InsertResults(ctx, nctx.TableName, nctx.Action, results); err != nil {
			h.log.DatabaseError("insert notification deliveries", err)
		}
	}
}

// selectTemplates resolves which templates fire for this event. A matching
// both-audience template is exclusive; otherwise the imam and admin slots
// resolve independently and whichever match are used.
func (h *Hook) selectTemplates(ctx context.Context, nctx Context) []Template {
	if t := h.resolveSlot(ctx, RecipientBoth, nctx); t != nil {
		return []Template{*t}
	}
	var out []Template
	if t := h.resolveSlot(ctx, RecipientImam, nctx); t != nil {
		out = append(out, *t)
	}
	if t := h.resolveSlot(ctx, RecipientAdmin, nctx); t != nil {
		out = append(out, *t)
	}
	return out
}

func (h *Hook) resolveSlot(ctx context.Context, rt RecipientType, nctx Context) *Template {
	candidates, err := h.templates.FindActiveByRecipientType(ctx, rt)
	if err != nil {
		h.log.Warn("notification_template_fetch_failed",
			slog.String("recipient_type", string(rt)),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return h.resolver.Resolve(candidates, nctx.TableName, nctx.Action, nctx.StatusID)
}

func (h *Hook) fanOutAddresses(ctx context.Context, nctx Context) []string {
	conversationID, err := uuid.Parse(fieldString(nctx.Record, "conversation_id"))
	if err != nil {
		h.log.Warn("notification_fanout_missing_conversation",
			slog.String("table", nctx.TableName),
		)
		return nil
	}
	senderID, err := uuid.Parse(fieldString(nctx.Record, "sender_profile_id"))
	if err != nil {
		h.log.Warn("notification_fanout_missing_sender",
			slog.String("conversation_id", conversationID.String()),
		)
		return nil
	}
	return h.recipients.FanOut(ctx, conversationID, senderID)
}
