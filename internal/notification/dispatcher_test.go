package notification

import (
	"context"
	"testing"
	"time"
)

// zeroConcurrencyConfig simulates a malformed NOTIFY_DISPATCH_CONCURRENCY,
// which the config loader coerces to 0.
type zeroConcurrencyConfig struct {
	testConfig
}

func (zeroConcurrencyConfig) GetNotifyDispatchConcurrency() int { return 0 }

func TestDispatchOneFailureDoesNotBlockOthers(t *testing.T) {
	sender := &fakeSender{failFor: map[string]error{
		"broken@example.com": testError("mailbox unavailable"),
	}}
	d := NewDispatcher(sender, testConfig{}, testLog())

	msgs := []RenderedMessage{{
		TemplateName: "status-change",
		Subject:      "s",
		Body:         "b",
		Recipients:   []string{"a@example.com", "broken@example.com", "c@example.com"},
	}}

	results := d.Dispatch(context.Background(), msgs)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	succeeded, failed := 0, 0
	for _, res := range results {
		if res.Success {
			succeeded++
			continue
		}
		failed++
		if res.Recipient != "broken@example.com" {
			t.Fatalf("unexpected failing recipient %q", res.Recipient)
		}
		if res.Err == nil {
			t.Fatalf("failed result must carry its error")
		}
	}
	if succeeded != 2 || failed != 1 {
		t.Fatalf("succeeded=%d failed=%d", succeeded, failed)
	}

	delivered := sender.recipients()
	if !containsAddr(delivered, "a@example.com") || !containsAddr(delivered, "c@example.com") {
		t.Fatalf("healthy recipients not delivered: %v", delivered)
	}
}

func TestDispatchEmptyRecipientSetSendsNothing(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, testConfig{}, testLog())

	results := d.Dispatch(context.Background(), []RenderedMessage{{TemplateName: "t"}})
	if results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
	if len(sender.recipients()) != 0 {
		t.Fatalf("no transport calls expected, got %v", sender.recipients())
	}
}

func TestDispatchZeroConcurrencyFallsBackToDefault(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, zeroConcurrencyConfig{}, testLog())

	done := make(chan []DeliveryResult, 1)
	go func() {
		done <- d.Dispatch(context.Background(), []RenderedMessage{{
			TemplateName: "status-change",
			Recipients:   []string{"a@example.com", "b@example.com"},
		}})
	}()

	select {
	case results := <-done:
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("dispatch blocked on a zero-weight semaphore")
	}
}

func TestDispatchMultipleMessages(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, testConfig{}, testLog())

	msgs := []RenderedMessage{
		{TemplateName: "imam", Recipients: []string{"imam@example.com"}},
		{TemplateName: "admin", Recipients: []string{"admin1@example.com", "admin2@example.com"}},
	}

	results := d.Dispatch(context.Background(), msgs)
	if len(results) != 3 {
		t.Fatalf("expected one result per (message, recipient) pair, got %d", len(results))
	}
	for _, res := range results {
		if !res.Success {
			t.Fatalf("unexpected failure for %q: %v", res.Recipient, res.Err)
		}
		if res.TemplateName == "" {
			t.Fatalf("result must name its template")
		}
	}
}
