package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestExtractProfileVariablesForApplicationForm(t *testing.T) {
	profileID := uuid.New()
	profiles := &fakeProfiles{byID: map[uuid.UUID]Profile{
		profileID: {ID: profileID, Name: "Ahmed", Surname: "Yilmaz", Email: "ahmed@example.com", FileNumber: "F-0042"},
	}}
	e := NewExtractor(profiles, testLog())

	rec := Record{
		"imam_profile_id": profileID,
		"title":           "Housing support",
		"description":     "Rent assistance for March",
		"updated_at":      time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	vars := e.Extract(context.Background(), TableApplicationForms, rec, nil)

	if vars["imam_name"] != "Ahmed Yilmaz" {
		t.Fatalf("imam_name = %q", vars["imam_name"])
	}
	if vars["file_number"] != "F-0042" {
		t.Fatalf("file_number = %q", vars["file_number"])
	}
	if vars["topic"] != "Housing support" {
		t.Fatalf("topic = %q", vars["topic"])
	}
	if vars["submission_date"] != "14 March 2026" {
		t.Fatalf("submission_date = %q", vars["submission_date"])
	}
	if vars["table_name"] != TableApplicationForms {
		t.Fatalf("table_name = %q", vars["table_name"])
	}
}

func TestExtractProfileTableUsesRecordFields(t *testing.T) {
	// The profile row itself is the richer source; its fields win over the
	// lookup result.
	profileID := uuid.New()
	profiles := &fakeProfiles{byID: map[uuid.UUID]Profile{
		profileID: {ID: profileID, Name: "Stale", Surname: "Copy", Email: "stale@example.com"},
	}}
	e := NewExtractor(profiles, testLog())

	rec := Record{
		"id":      profileID,
		"name":    "Fatima",
		"surname": "Demir",
	}
	vars := e.Extract(context.Background(), TableImamProfiles, rec, nil)

	if vars["imam_name"] != "Fatima Demir" {
		t.Fatalf("imam_name = %q", vars["imam_name"])
	}
	if vars["name"] != "Fatima" || vars["surname"] != "Demir" {
		t.Fatalf("name/surname = %q/%q", vars["name"], vars["surname"])
	}
}

func TestExtractLookupFailureYieldsEmptyVariables(t *testing.T) {
	e := NewExtractor(&fakeProfiles{err: errProfileNotFound}, testLog())

	rec := Record{"imam_profile_id": uuid.New().String()}
	vars := e.Extract(context.Background(), TableBonusRequests, rec, nil)

	if vars["imam_name"] != "" || vars["email"] != "" {
		t.Fatalf("expected empty profile variables, got %q / %q", vars["imam_name"], vars["email"])
	}
}

func TestExtractBonusAmountFormatting(t *testing.T) {
	e := NewExtractor(&fakeProfiles{}, testLog())

	rec := Record{
		"description":  "Eid bonus",
		"amount_cents": int64(125050),
	}
	vars := e.Extract(context.Background(), TableBonusRequests, rec, nil)

	if vars["amount"] != "1250.50" {
		t.Fatalf("amount = %q", vars["amount"])
	}
	if vars["topic"] != "Eid bonus" {
		t.Fatalf("topic = %q", vars["topic"])
	}
}

func TestExtractMessagePreviewTruncation(t *testing.T) {
	e := NewExtractor(&fakeProfiles{}, testLog())

	long := strings.Repeat("a", 120)
	rec := Record{"body": long, "topic": "Friday schedule"}
	vars := e.Extract(context.Background(), TableMessages, rec, nil)

	want := strings.Repeat("a", messagePreviewLimit) + "…"
	if vars["message_preview"] != want {
		t.Fatalf("message_preview = %q", vars["message_preview"])
	}

	short := Record{"body": "short note", "topic": "Friday schedule"}
	vars = e.Extract(context.Background(), TableMessages, short, nil)
	if vars["message_preview"] != "short note" {
		t.Fatalf("short message_preview = %q", vars["message_preview"])
	}
}

func TestExtractTopicFallsBackToTableLabel(t *testing.T) {
	e := NewExtractor(&fakeProfiles{}, testLog())

	vars := e.Extract(context.Background(), TableImamProfiles, Record{}, nil)
	if vars["topic"] != "Imam Profile" {
		t.Fatalf("topic = %q", vars["topic"])
	}
}

func TestExtractSubmissionDatePrefersUpdatedAt(t *testing.T) {
	e := NewExtractor(&fakeProfiles{}, testLog())

	rec := Record{
		"created_at": time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		"updated_at": "2026-02-02T08:30:00Z",
	}
	vars := e.Extract(context.Background(), TableImamProfiles, rec, nil)
	if vars["submission_date"] != "2 February 2026" {
		t.Fatalf("submission_date = %q", vars["submission_date"])
	}
}

func TestTableLabelUnknownFallsThrough(t *testing.T) {
	if got := TableLabel("Custom_Table"); got != "Custom_Table" {
		t.Fatalf("TableLabel = %q", got)
	}
}
