package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"imamportal_backend/internal/events"
)

// syncBus runs handlers inline so tests observe the full pipeline without a
// worker pool.
type syncBus struct {
	handlers map[string][]events.Handler
}

func newSyncBus() *syncBus {
	return &syncBus{handlers: make(map[string][]events.Handler)}
}

func (b *syncBus) Subscribe(name string, h events.Handler) {
	b.handlers[name] = append(b.handlers[name], h)
}

func (b *syncBus) Publish(ctx context.Context, ev events.Event) {
	for _, h := range b.handlers[ev.EventName()] {
		_ = h.Handle(ctx, ev)
	}
}

func (b *syncBus) PublishSync(ctx context.Context, ev events.Event) error {
	b.Publish(ctx, ev)
	return nil
}

type hookFixture struct {
	hook       *Hook
	sender     *fakeSender
	deliveries *fakeDeliveries
}

func newHookFixture(templates *fakeTemplates, profiles *fakeProfiles, admins *fakeAdmins, participants *fakeParticipants) *hookFixture {
	log := testLog()
	cfg := testConfig{}
	sender := &fakeSender{}
	deliveries := &fakeDeliveries{}

	hook := NewHook(
		templates,
		NewResolver(),
		NewExtractor(profiles, log),
		NewRecipientResolver(profiles, admins, participants, cfg, log),
		NewRenderer(cfg),
		NewDispatcher(sender, cfg, log),
		deliveries,
		newSyncBus(),
		log,
	)
	return &hookFixture{hook: hook, sender: sender, deliveries: deliveries}
}

func slotTemplate(id int64, name string, rt RecipientType, table string, action Action) Template {
	return Template{
		ID:            id,
		Name:          name,
		RecipientType: rt,
		Active:        true,
		Subject:       "subject",
		Body:          "body for {{imam_name}}",
		Triggers:      []TriggerRule{{TableName: table, Action: action}},
	}
}

func TestHookBothSlotIsExclusive(t *testing.T) {
	profileID := uuid.New()
	templates := &fakeTemplates{bySlot: map[RecipientType][]Template{
		RecipientBoth:  {slotTemplate(3, "both-create", RecipientBoth, TableApplicationForms, ActionCreate)},
		RecipientImam:  {slotTemplate(1, "imam-create", RecipientImam, TableApplicationForms, ActionCreate)},
		RecipientAdmin: {slotTemplate(2, "admin-create", RecipientAdmin, TableApplicationForms, ActionCreate)},
	}}
	profiles := &fakeProfiles{byID: map[uuid.UUID]Profile{
		profileID: {ID: profileID, Email: "imam@example.com"},
	}}
	admins := &fakeAdmins{emails: []string{"admin@example.com"}}
	f := newHookFixture(templates, profiles, admins, &fakeParticipants{})

	f.hook.Notify(TableApplicationForms, ActionCreate, Record{"imam_profile_id": profileID}, nil)

	if f.deliveries.calls != 1 {
		t.Fatalf("expected one delivery batch, got %d", f.deliveries.calls)
	}
	for _, res := range f.deliveries.results {
		if res.TemplateName != "both-create" {
			t.Fatalf("expected only the both template to fire, got %q", res.TemplateName)
		}
	}
	got := f.sender.recipients()
	if len(got) != 2 || !containsAddr(got, "imam@example.com") || !containsAddr(got, "admin@example.com") {
		t.Fatalf("both slot must reach imam and admin once each, got %v", got)
	}
}

func TestHookImamAndAdminSlotsFireIndependently(t *testing.T) {
	profileID := uuid.New()
	templates := &fakeTemplates{bySlot: map[RecipientType][]Template{
		RecipientImam:  {slotTemplate(1, "imam-create", RecipientImam, TableApplicationForms, ActionCreate)},
		RecipientAdmin: {slotTemplate(2, "admin-create", RecipientAdmin, TableApplicationForms, ActionCreate)},
	}}
	profiles := &fakeProfiles{byID: map[uuid.UUID]Profile{
		profileID: {ID: profileID, Email: "imam@example.com"},
	}}
	admins := &fakeAdmins{emails: []string{"admin@example.com"}}
	f := newHookFixture(templates, profiles, admins, &fakeParticipants{})

	f.hook.Notify(TableApplicationForms, ActionCreate, Record{"imam_profile_id": profileID}, nil)

	names := make(map[string]bool)
	for _, res := range f.deliveries.results {
		names[res.TemplateName] = true
	}
	if !names["imam-create"] || !names["admin-create"] {
		t.Fatalf("expected both slots to fire, got %v", names)
	}
}

func TestHookNoActiveTemplateIsANoop(t *testing.T) {
	f := newHookFixture(&fakeTemplates{}, &fakeProfiles{}, &fakeAdmins{}, &fakeParticipants{})

	f.hook.Notify(TableImamProfiles, ActionCreate, Record{}, nil)

	if f.deliveries.calls != 0 {
		t.Fatalf("expected no delivery write, got %d", f.deliveries.calls)
	}
	if len(f.sender.recipients()) != 0 {
		t.Fatalf("expected no sends, got %v", f.sender.recipients())
	}
}

func TestHookDerivesStatusTransition(t *testing.T) {
	profileID := uuid.New()
	approved := slotTemplate(5, "approved", RecipientImam, TableApplicationForms, ActionUpdate)
	approved.Triggers = []TriggerRule{{TableName: TableApplicationForms, Action: ActionUpdate, StatusID: intPtr(3)}}
	templates := &fakeTemplates{bySlot: map[RecipientType][]Template{
		RecipientImam: {approved},
	}}
	profiles := &fakeProfiles{byID: map[uuid.UUID]Profile{
		profileID: {ID: profileID, Email: "imam@example.com"},
	}}
	f := newHookFixture(templates, profiles, &fakeAdmins{}, &fakeParticipants{})

	// Same status before and after: no transition, the status rule stays quiet.
	f.hook.Notify(TableApplicationForms, ActionUpdate,
		Record{"imam_profile_id": profileID, "status_id": 3},
		Record{"imam_profile_id": profileID, "status_id": 3},
	)
	if len(f.sender.recipients()) != 0 {
		t.Fatalf("unchanged status must not fire a status rule, got %v", f.sender.recipients())
	}

	f.hook.Notify(TableApplicationForms, ActionUpdate,
		Record{"imam_profile_id": profileID, "status_id": 3},
		Record{"imam_profile_id": profileID, "status_id": 1},
	)
	if got := f.sender.recipients(); len(got) != 1 || got[0] != "imam@example.com" {
		t.Fatalf("transition into covered status must fire, got %v", got)
	}
}

func TestHookExplicitRecipientsBypassSlots(t *testing.T) {
	templates := &fakeTemplates{bySlot: map[RecipientType][]Template{
		RecipientAdmin: {slotTemplate(1, "admin-create", RecipientAdmin, TableBonusRequests, ActionCreate)},
	}}
	admins := &fakeAdmins{emails: []string{"admin@example.com"}}
	f := newHookFixture(templates, &fakeProfiles{}, admins, &fakeParticipants{})

	f.hook.Notify(TableBonusRequests, ActionCreate, Record{}, nil, "direct@example.com")

	got := f.sender.recipients()
	if len(got) != 1 || got[0] != "direct@example.com" {
		t.Fatalf("explicit recipients must be used verbatim, got %v", got)
	}
}

func TestHookMessageFanOut(t *testing.T) {
	sender := uuid.New()
	memberA := uuid.New()
	memberB := uuid.New()
	conversationID := uuid.New()

	templates := &fakeTemplates{bySlot: map[RecipientType][]Template{
		RecipientImam: {slotTemplate(1, "new-message", RecipientImam, TableMessages, ActionCreate)},
	}}
	participants := &fakeParticipants{members: []Participant{
		{ProfileID: sender, ProfileEmail: "sender@example.com"},
		{ProfileID: memberA, ProfileEmail: "a@example.com"},
		{ProfileID: memberB, UserEmail: "b@example.com"},
	}}
	f := newHookFixture(templates, &fakeProfiles{}, &fakeAdmins{}, participants)

	f.hook.Notify(TableMessages, ActionCreate, Record{
		"conversation_id":   conversationID,
		"sender_profile_id": sender,
		"body":              "salaam",
		"topic":             "schedule",
	}, nil)

	got := f.sender.recipients()
	if len(got) != 2 {
		t.Fatalf("expected one send per participant, got %v", got)
	}
	if containsAddr(got, "sender@example.com") {
		t.Fatalf("sender must not be notified, got %v", got)
	}

	if f.deliveries.table != TableMessages || f.deliveries.action != ActionCreate {
		t.Fatalf("delivery log context = %q/%q", f.deliveries.table, f.deliveries.action)
	}
	if len(f.deliveries.results) != 2 {
		t.Fatalf("expected 2 delivery results, got %d", len(f.deliveries.results))
	}
}

func TestHookRecordsDeliveryOutcomes(t *testing.T) {
	profileID := uuid.New()
	templates := &fakeTemplates{bySlot: map[RecipientType][]Template{
		RecipientImam: {slotTemplate(1, "imam-create", RecipientImam, TableImamProfiles, ActionCreate)},
	}}
	profiles := &fakeProfiles{byID: map[uuid.UUID]Profile{
		profileID: {ID: profileID, Email: "imam@example.com"},
	}}
	f := newHookFixture(templates, profiles, &fakeAdmins{}, &fakeParticipants{})
	f.sender.failFor = map[string]error{"imam@example.com": testError("smtp refused")}

	f.hook.Notify(TableImamProfiles, ActionCreate, Record{"id": profileID}, nil)

	if f.deliveries.calls != 1 {
		t.Fatalf("expected delivery write, got %d", f.deliveries.calls)
	}
	res := f.deliveries.results
	if len(res) != 1 || res[0].Success || res[0].Recipient != "imam@example.com" {
		t.Fatalf("unexpected results %+v", res)
	}
}
