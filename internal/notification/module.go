package notification

import (
	"imamportal_backend/internal/email"
	"imamportal_backend/internal/events"
	"imamportal_backend/platform/config"
	"imamportal_backend/platform/logger"
)

// Module wires the dispatch engine and subscribes it to the event bus. It is
// not HTTP-facing; the template administration surface lives in the handler
// subpackage.
type Module struct {
	hook *Hook
}

// NewModule assembles the dispatch pipeline from its collaborators. The
// template source, delivery writer, and lookups are owned by other modules
// and injected here so the engine stays read-only toward them.
func NewModule(
	sender email.Sender,
	templates TemplateSource,
	deliveries DeliveryWriter,
	profiles ProfileLookup,
	admins AdminRoster,
	participants ConversationParticipants,
	cfg config.NotificationConfig,
	bus events.Bus,
	log *logger.Logger,
) *Module {
	resolver := NewResolver()
	extractor := NewExtractor(profiles, log)
	recipients := NewRecipientResolver(profiles, admins, participants, cfg, log)
	renderer := NewRenderer(cfg)
	dispatcher := NewDispatcher(sender, cfg, log)
	hook := NewHook(templates, resolver, extractor, recipients, renderer, dispatcher, deliveries, bus, log)

	return &Module{hook: hook}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// Hook returns the notify entry point for domain services.
func (m *Module) Hook() *Hook { return m.hook }
