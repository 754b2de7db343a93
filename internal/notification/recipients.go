package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"imamportal_backend/platform/config"
	"imamportal_backend/platform/logger"
)

// RecipientResolver turns a recipient slot and a notification context into a
// deduplicated address list. Duplicates keep their first occurrence so the
// resulting order is deterministic.
type RecipientResolver struct {
	profiles     ProfileLookup
	admins       AdminRoster
	participants ConversationParticipants
	cfg          config.NotificationConfig
	log          *logger.Logger
}

// NewRecipientResolver creates a recipient resolver.
func NewRecipientResolver(
	profiles ProfileLookup,
	admins AdminRoster,
	participants ConversationParticipants,
	cfg config.NotificationConfig,
	log *logger.Logger,
) *RecipientResolver {
	return &RecipientResolver{
		profiles:     profiles,
		admins:       admins,
		participants: participants,
		cfg:          cfg,
		log:          log,
	}
}

// Resolve builds the address list for one recipient slot. A slot that yields
// nothing is not an error; the caller decides what an empty aggregate means.
func (r *RecipientResolver) Resolve(ctx context.Context, rt RecipientType, nctx Context) []string {
	switch rt {
	case RecipientImam:
		return dedupe(r.resolveImam(ctx, nctx))
	case RecipientAdmin:
		return dedupe(r.resolveAdmins(ctx))
	case RecipientBoth:
		combined := append(r.resolveImam(ctx, nctx), r.resolveAdmins(ctx)...)
		return dedupe(combined)
	default:
		r.log.Warn("notification_unknown_recipient_type", slog.String("type", string(rt)))
		return nil
	}
}

// resolveImam looks up the single profile the triggering record references
// and returns its stored email. A record without a profile reference, or a
// profile without an email, contributes no recipients.
func (r *RecipientResolver) resolveImam(ctx context.Context, nctx Context) []string {
	key, ok := profileKeyByTable[nctx.TableName]
	if !ok {
		return nil
	}
	raw := fieldString(nctx.Record, key)
	if raw == "" {
		r.log.RecipientSkipped(nctx.TableName, "no profile reference on record", "")
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		r.log.RecipientSkipped(nctx.TableName, "invalid profile reference", raw)
		return nil
	}
	p, err := r.profiles.GetByID(ctx, id)
	if err != nil {
		r.log.RecipientSkipped(nctx.TableName, "profile lookup failed", id.String())
		return nil
	}
	if p.Email == "" {
		r.log.RecipientSkipped(nctx.TableName, "profile has no email", id.String())
		return nil
	}
	return []string{p.Email}
}

// resolveAdmins returns the administrative audience. A non-empty configured
// override list is authoritative and the user roster is not consulted. The
// fallback list is used only when both the override and the roster yield
// nothing.
func (r *RecipientResolver) resolveAdmins(ctx context.Context) []string {
	if override := r.cfg.GetAdminEmailOverride(); len(override) > 0 {
		return override
	}

	emails, err := r.admins.ListAdminEmails(ctx)
	if err != nil {
		r.log.Warn("notification_admin_roster_failed", slog.String("error", err.Error()))
		emails = nil
	}
	filtered := emails[:0:0]
	for _, e := range emails {
		if e != "" {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) > 0 {
		return filtered
	}
	return r.cfg.GetAdminEmailFallback()
}

// FanOut resolves every participant of a conversation except the sender to
// an address, preferring the profile email over the account email. A
// participant with neither is skipped with a warning. Each returned address
// is meant to receive its own independently dispatched notification.
func (r *RecipientResolver) FanOut(ctx context.Context, conversationID, senderProfileID uuid.UUID) []string {
	members, err := r.participants.ListFor(ctx, conversationID)
	if err != nil {
		r.log.Warn("notification_participants_lookup_failed",
			slog.String("conversation_id", conversationID.String()),
			slog.String("error", err.Error()),
		)
		return nil
	}

	var out []string
	for _, m := range members {
		if m.ProfileID == senderProfileID {
			continue
		}
		switch {
		case m.ProfileEmail != "":
			out = append(out, m.ProfileEmail)
		case m.UserEmail != "":
			out = append(out, m.UserEmail)
		default:
			r.log.RecipientSkipped(TableMessages, "participant has no email", m.ProfileID.String())
		}
	}
	return dedupe(out)
}

// dedupe removes duplicate addresses, preserving first-occurrence order.
func dedupe(addrs []string) []string {
	if len(addrs) < 2 {
		return addrs
	}
	seen := make(map[string]struct{}, len(addrs))
	out := addrs[:0:0]
	for _, a := range addrs {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
