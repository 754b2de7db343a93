// Package notification implements the template-driven notification dispatch
// engine. Whenever a domain record is created or transitions status, the
// engine decides which persisted template applies, extracts variables from
// the record, resolves recipients, renders the template, and fans delivery
// out over email. Dispatch is detached from the triggering write, which
// never observes a notification failure.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action identifies the kind of write that triggered notification
// consideration.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// RecipientType is the audience slot a template targets.
type RecipientType string

const (
	RecipientImam  RecipientType = "imam"
	RecipientAdmin RecipientType = "admin"
	RecipientBoth  RecipientType = "both"
)

// Logical table identifiers used in trigger rules. These are the names the
// original case files use and are kept stable for template compatibility;
// they are not the physical SQL table names.
const (
	TableImamProfiles     = "Imam_Profiles"
	TableApplicationForms = "Application_Forms"
	TableBonusRequests    = "Bonus_Requests"
	TableMessages         = "Messages"
)

// tableLabels maps logical table identifiers to the human label exposed to
// templates. An unknown identifier falls back to the raw name.
var tableLabels = map[string]string{
	TableImamProfiles:     "Imam Profile",
	TableApplicationForms: "Aid Application",
	TableBonusRequests:    "Bonus Request",
	TableMessages:         "Message",
}

// TriggerRule is one (table, action, optional status) tuple embedded in a
// template. A rule with StatusID set fires only on a transition into that
// status.
type TriggerRule struct {
	TableName string `json:"tableName"`
	Action    Action `json:"action"`
	StatusID  *int   `json:"statusId,omitempty"`
}

// Template is a persisted notification template. Rows are mutated only
// through the template administration surface; the dispatch engine reads
// them.
type Template struct {
	ID            int64
	Name          string
	RecipientType RecipientType
	Triggers      []TriggerRule
	Subject       string
	Body          string
	Active        bool
	LoginURL      *string
	ImageShowLink *string
	HasImageData  bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Record is a committed domain row as a loose field map. Services hand the
// post-commit row (and for updates the pre-write row) to the hook; the
// engine never reads the database for the triggering record itself.
type Record map[string]any

// Context carries everything one notify invocation needs. It is built per
// call and discarded with it; nothing here is shared across invocations.
type Context struct {
	TableName          string
	Action             Action
	Record             Record
	Previous           Record
	StatusID           *int
	ExplicitRecipients []string
}

// DeliveryResult reports the outcome of one send to one recipient.
type DeliveryResult struct {
	Recipient    string
	TemplateName string
	Success      bool
	Err          error
}

// =============================================================================
// Collaborator contracts (implemented by other modules, injected here)
// =============================================================================

// TemplateSource reads active templates for one recipient slot, most
// recently created first.
type TemplateSource interface {
	FindActiveByRecipientType(ctx context.Context, rt RecipientType) ([]Template, error)
}

// Profile is the imam profile projection the engine needs for variable
// extraction and imam-slot recipient resolution.
type Profile struct {
	ID         uuid.UUID
	Name       string
	Surname    string
	Email      string
	FileNumber string
	StatusID   int
}

// ProfileLookup resolves imam profiles read-only.
type ProfileLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (Profile, error)
}

// AdminRoster lists the email addresses of active administrative users.
type AdminRoster interface {
	ListAdminEmails(ctx context.Context) ([]string, error)
}

// Participant is one member of a conversation with its candidate addresses.
// ProfileEmail is preferred; UserEmail is the fallback.
type Participant struct {
	ProfileID    uuid.UUID
	ProfileEmail string
	UserEmail    string
}

// ConversationParticipants lists the members of a conversation for the
// message fan-out path.
type ConversationParticipants interface {
	ListFor(ctx context.Context, conversationID uuid.UUID) ([]Participant, error)
}

// DeliveryWriter persists per-recipient delivery outcomes for server-side
// observability. Failures to write the log are themselves only logged.
type DeliveryWriter interface {
	InsertResults(ctx context.Context, table string, action Action, results []DeliveryResult) error
}
