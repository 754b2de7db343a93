package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"imamportal_backend/platform/logger"
)

// messagePreviewLimit caps the message body preview in rune count.
const messagePreviewLimit = 80

// submissionDateLayout is the long human date used in rendered content.
const submissionDateLayout = "2 January 2006"

// profileKeyByTable names the record field carrying the profile reference
// per table. Tables without an entry contribute no profile variables.
var profileKeyByTable = map[string]string{
	TableImamProfiles:     "id",
	TableApplicationForms: "imam_profile_id",
	TableBonusRequests:    "imam_profile_id",
	TableMessages:         "sender_profile_id",
}

// Extractor turns a committed record into a flat string variable map for
// template rendering. Every mapped variable always has a value; a field
// missing from the record yields an empty string, never an error.
type Extractor struct {
	profiles ProfileLookup
	log      *logger.Logger
}

// NewExtractor creates a variable extractor.
func NewExtractor(profiles ProfileLookup, log *logger.Logger) *Extractor {
	return &Extractor{profiles: profiles, log: log}
}

// Extract builds the variable map for one record. The previous record is
// accepted for parity with the hook's call shape; no current variable is
// derived from it.
func (e *Extractor) Extract(ctx context.Context, table string, record, previous Record) map[string]string {
	vars := make(map[string]string)

	if p := e.lookupProfile(ctx, table, record); p != nil {
		vars["name"] = p.Name
		vars["surname"] = p.Surname
		vars["email"] = p.Email
		vars["file_number"] = p.FileNumber
		vars["imam_name"] = strings.TrimSpace(p.Name + " " + p.Surname)
	} else {
		vars["name"] = ""
		vars["surname"] = ""
		vars["email"] = ""
		vars["file_number"] = ""
		vars["imam_name"] = ""
	}

	vars["submission_date"] = submissionDate(record)

	if mapper, ok := tableMappers[table]; ok {
		mapper(vars, record)
	}

	vars["table_name"] = table
	if vars["topic"] == "" {
		vars["topic"] = TableLabel(table)
	}
	return vars
}

// tableMappers holds the per-table field mappings applied after the common
// variables. Mappers may overwrite common variables when the record itself
// is the richer source (the profile table carries its own name fields).
var tableMappers = map[string]func(vars map[string]string, rec Record){
	TableImamProfiles: func(vars map[string]string, rec Record) {
		name := fieldString(rec, "name")
		surname := fieldString(rec, "surname")
		vars["name"] = name
		vars["surname"] = surname
		vars["imam_name"] = strings.TrimSpace(name + " " + surname)
		if v := fieldString(rec, "email"); v != "" {
			vars["email"] = v
		}
		if v := fieldString(rec, "file_number"); v != "" {
			vars["file_number"] = v
		}
	},
	TableApplicationForms: func(vars map[string]string, rec Record) {
		vars["topic"] = fieldString(rec, "title")
		vars["title"] = fieldString(rec, "title")
		vars["description"] = fieldString(rec, "description")
	},
	TableBonusRequests: func(vars map[string]string, rec Record) {
		vars["topic"] = fieldString(rec, "description")
		vars["description"] = fieldString(rec, "description")
		vars["amount"] = amountString(rec, "amount_cents")
	},
	TableMessages: func(vars map[string]string, rec Record) {
		vars["topic"] = fieldString(rec, "topic")
		vars["message_preview"] = previewString(fieldString(rec, "body"))
	},
}

// TableLabel returns the human label for a logical table identifier, falling
// back to the raw identifier.
func TableLabel(table string) string {
	if label, ok := tableLabels[table]; ok {
		return label
	}
	return table
}

func (e *Extractor) lookupProfile(ctx context.Context, table string, rec Record) *Profile {
	key, ok := profileKeyByTable[table]
	if !ok {
		return nil
	}
	raw := fieldString(rec, key)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		e.log.Warn("notification_profile_ref_invalid",
			slog.String("table", table),
			slog.String("value", raw),
		)
		return nil
	}
	p, err := e.profiles.GetByID(ctx, id)
	if err != nil {
		// Lookup failure degrades to empty variables for this slot.
		e.log.Warn("notification_profile_lookup_failed",
			slog.String("table", table),
			slog.String("profile_id", id.String()),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return &p
}

// submissionDate formats updated_at, falling back to created_at, as a long
// human date. Unparseable or absent timestamps yield an empty string.
func submissionDate(rec Record) string {
	for _, key := range []string{"updated_at", "created_at"} {
		if t, ok := fieldTime(rec, key); ok {
			return t.Format(submissionDateLayout)
		}
	}
	return ""
}

// previewString truncates a message body to the preview limit, marking the
// cut with an ellipsis.
func previewString(body string) string {
	runes := []rune(body)
	if len(runes) <= messagePreviewLimit {
		return body
	}
	return string(runes[:messagePreviewLimit]) + "…"
}

// fieldString stringifies a record field. Missing fields and nil values
// become the empty string.
func fieldString(rec Record, key string) string {
	raw, ok := rec[key]
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case uuid.UUID:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// fieldInt reads an integer field that may arrive as any numeric type or a
// numeric string.
func fieldInt(rec Record, key string) (int, bool) {
	raw, ok := rec[key]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

// fieldTime reads a timestamp field that may be a time.Time or an RFC 3339
// string.
func fieldTime(rec Record, key string) (time.Time, bool) {
	raw, ok := rec[key]
	if !ok || raw == nil {
		return time.Time{}, false
	}
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// amountString renders an integer cent amount as a decimal money string.
func amountString(rec Record, key string) string {
	raw, ok := rec[key]
	if !ok || raw == nil {
		return ""
	}
	var cents int64
	switch v := raw.(type) {
	case int:
		cents = int64(v)
	case int32:
		cents = int64(v)
	case int64:
		cents = v
	case float64:
		cents = int64(v)
	default:
		return fieldString(rec, key)
	}
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
