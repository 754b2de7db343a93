package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestResolveImamSlot(t *testing.T) {
	profileID := uuid.New()
	profiles := &fakeProfiles{byID: map[uuid.UUID]Profile{
		profileID: {ID: profileID, Email: "imam@example.com"},
	}}
	r := NewRecipientResolver(profiles, &fakeAdmins{}, &fakeParticipants{}, testConfig{}, testLog())

	nctx := Context{TableName: TableApplicationForms, Record: Record{"imam_profile_id": profileID}}
	got := r.Resolve(context.Background(), RecipientImam, nctx)
	if len(got) != 1 || got[0] != "imam@example.com" {
		t.Fatalf("imam slot = %v", got)
	}
}

func TestResolveImamSlotSkipsProfileWithoutEmail(t *testing.T) {
	profileID := uuid.New()
	profiles := &fakeProfiles{byID: map[uuid.UUID]Profile{
		profileID: {ID: profileID},
	}}
	r := NewRecipientResolver(profiles, &fakeAdmins{}, &fakeParticipants{}, testConfig{}, testLog())

	nctx := Context{TableName: TableApplicationForms, Record: Record{"imam_profile_id": profileID}}
	if got := r.Resolve(context.Background(), RecipientImam, nctx); len(got) != 0 {
		t.Fatalf("expected no recipients, got %v", got)
	}
}

func TestResolveAdminOverrideIsAuthoritative(t *testing.T) {
	admins := &fakeAdmins{emails: []string{"roster@example.com"}}
	cfg := testConfig{override: []string{"override@example.com"}}
	r := NewRecipientResolver(&fakeProfiles{}, admins, &fakeParticipants{}, cfg, testLog())

	got := r.Resolve(context.Background(), RecipientAdmin, Context{})
	if len(got) != 1 || got[0] != "override@example.com" {
		t.Fatalf("admin slot = %v", got)
	}
}

func TestResolveAdminRosterThenFallback(t *testing.T) {
	cfg := testConfig{fallback: []string{"fallback@example.com"}}

	r := NewRecipientResolver(&fakeProfiles{}, &fakeAdmins{emails: []string{"a@example.com", ""}}, &fakeParticipants{}, cfg, testLog())
	got := r.Resolve(context.Background(), RecipientAdmin, Context{})
	if len(got) != 1 || got[0] != "a@example.com" {
		t.Fatalf("roster slot = %v", got)
	}

	r = NewRecipientResolver(&fakeProfiles{}, &fakeAdmins{}, &fakeParticipants{}, cfg, testLog())
	got = r.Resolve(context.Background(), RecipientAdmin, Context{})
	if len(got) != 1 || got[0] != "fallback@example.com" {
		t.Fatalf("fallback slot = %v", got)
	}
}

func TestResolveAdminRosterErrorUsesFallback(t *testing.T) {
	cfg := testConfig{fallback: []string{"fallback@example.com"}}
	r := NewRecipientResolver(&fakeProfiles{}, &fakeAdmins{err: testError("db down")}, &fakeParticipants{}, cfg, testLog())

	got := r.Resolve(context.Background(), RecipientAdmin, Context{})
	if len(got) != 1 || got[0] != "fallback@example.com" {
		t.Fatalf("admin slot = %v", got)
	}
}

func TestResolveBothDeduplicates(t *testing.T) {
	// An imam who is also on the admin list receives one notification.
	profileID := uuid.New()
	profiles := &fakeProfiles{byID: map[uuid.UUID]Profile{
		profileID: {ID: profileID, Email: "shared@example.com"},
	}}
	admins := &fakeAdmins{emails: []string{"shared@example.com", "admin@example.com"}}
	r := NewRecipientResolver(profiles, admins, &fakeParticipants{}, testConfig{}, testLog())

	nctx := Context{TableName: TableApplicationForms, Record: Record{"imam_profile_id": profileID}}
	got := r.Resolve(context.Background(), RecipientBoth, nctx)
	if len(got) != 2 {
		t.Fatalf("expected 2 unique recipients, got %v", got)
	}
	if got[0] != "shared@example.com" || got[1] != "admin@example.com" {
		t.Fatalf("expected first-occurrence order, got %v", got)
	}
}

func TestFanOutExcludesSenderAndPrefersProfileEmail(t *testing.T) {
	sender := uuid.New()
	memberA := uuid.New()
	memberB := uuid.New()
	memberC := uuid.New()
	participants := &fakeParticipants{members: []Participant{
		{ProfileID: sender, ProfileEmail: "sender@example.com"},
		{ProfileID: memberA, ProfileEmail: "a-profile@example.com", UserEmail: "a-user@example.com"},
		{ProfileID: memberB, UserEmail: "b-user@example.com"},
		{ProfileID: memberC},
	}}
	r := NewRecipientResolver(&fakeProfiles{}, &fakeAdmins{}, participants, testConfig{}, testLog())

	got := r.FanOut(context.Background(), uuid.New(), sender)
	if len(got) != 2 {
		t.Fatalf("expected 2 addresses, got %v", got)
	}
	if containsAddr(got, "sender@example.com") {
		t.Fatalf("sender must be excluded, got %v", got)
	}
	if !containsAddr(got, "a-profile@example.com") {
		t.Fatalf("profile email must be preferred, got %v", got)
	}
	if !containsAddr(got, "b-user@example.com") {
		t.Fatalf("user email fallback missing, got %v", got)
	}
}

func TestFanOutLookupFailure(t *testing.T) {
	participants := &fakeParticipants{err: testError("db down")}
	r := NewRecipientResolver(&fakeProfiles{}, &fakeAdmins{}, participants, testConfig{}, testLog())

	if got := r.FanOut(context.Background(), uuid.New(), uuid.New()); got != nil {
		t.Fatalf("expected nil on lookup failure, got %v", got)
	}
}
