package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"imamportal_backend/platform/logger"
)

type testConfig struct {
	publicBaseURL string
	override      []string
	fallback      []string
}

func (c testConfig) GetPublicBaseURL() string {
	if c.publicBaseURL != "" {
		return c.publicBaseURL
	}
	return "https://portal.example.com"
}
func (c testConfig) GetAdminEmailOverride() []string     { return c.override }
func (c testConfig) GetAdminEmailFallback() []string     { return c.fallback }
func (c testConfig) GetNotifySendTimeout() time.Duration { return 2 * time.Second }
func (c testConfig) GetNotifyDispatchConcurrency() int   { return 4 }
func (c testConfig) GetNotifyWorkerPoolSize() int        { return 2 }

type fakeProfiles struct {
	byID map[uuid.UUID]Profile
	err  error
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (Profile, error) {
	if f.err != nil {
		return Profile{}, f.err
	}
	p, ok := f.byID[id]
	if !ok {
		return Profile{}, errProfileNotFound
	}
	return p, nil
}

type fakeAdmins struct {
	emails []string
	err    error
}

func (f *fakeAdmins) ListAdminEmails(context.Context) ([]string, error) {
	return f.emails, f.err
}

type fakeParticipants struct {
	members []Participant
	err     error
}

func (f *fakeParticipants) ListFor(context.Context, uuid.UUID) ([]Participant, error) {
	return f.members, f.err
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]error
}

func (f *fakeSender) Send(_ context.Context, to, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[to]; ok {
		return "", err
	}
	f.sent = append(f.sent, to)
	return "msg-id", nil
}

func (f *fakeSender) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	copy(out, f.sent)
	return out
}

type fakeTemplates struct {
	bySlot map[RecipientType][]Template
	err    error
}

func (f *fakeTemplates) FindActiveByRecipientType(_ context.Context, rt RecipientType) ([]Template, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bySlot[rt], nil
}

type fakeDeliveries struct {
	table   string
	action  Action
	results []DeliveryResult
	calls   int
}

func (f *fakeDeliveries) InsertResults(_ context.Context, table string, action Action, results []DeliveryResult) error {
	f.table = table
	f.action = action
	f.results = results
	f.calls++
	return nil
}

var errProfileNotFound = testError("profile not found")

type testError string

func (e testError) Error() string { return string(e) }

func testLog() *logger.Logger { return logger.New("development") }

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func containsAddr(addrs []string, want string) bool {
	for _, a := range addrs {
		if a == want {
			return true
		}
	}
	return false
}
