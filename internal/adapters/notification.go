// Package adapters contains thin anti-corruption adapters between bounded
// contexts, so the notification engine depends only on its own interfaces.
package adapters

import (
	"context"

	"github.com/google/uuid"

	messagesrepo "imamportal_backend/internal/messages/repository"
	"imamportal_backend/internal/notification"
	profilesrepo "imamportal_backend/internal/profiles/repository"
)

// ProfileLookupAdapter exposes the profiles repository as the notification
// engine's profile lookup.
type ProfileLookupAdapter struct {
	repo *profilesrepo.Repository
}

func NewProfileLookupAdapter(repo *profilesrepo.Repository) *ProfileLookupAdapter {
	return &ProfileLookupAdapter{repo: repo}
}

func (a *ProfileLookupAdapter) GetByID(ctx context.Context, id uuid.UUID) (notification.Profile, error) {
	p, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return notification.Profile{}, err
	}
	return notification.Profile{
		ID:         p.ID,
		Name:       p.Name,
		Surname:    p.Surname,
		Email:      p.Email,
		FileNumber: p.FileNumber,
		StatusID:   p.StatusID,
	}, nil
}

// ParticipantsAdapter exposes the messages repository as the notification
// engine's conversation participant source.
type ParticipantsAdapter struct {
	repo *messagesrepo.Repository
}

func NewParticipantsAdapter(repo *messagesrepo.Repository) *ParticipantsAdapter {
	return &ParticipantsAdapter{repo: repo}
}

func (a *ParticipantsAdapter) ListFor(ctx context.Context, conversationID uuid.UUID) ([]notification.Participant, error) {
	members, err := a.repo.ListParticipants(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	out := make([]notification.Participant, 0, len(members))
	for _, m := range members {
		out = append(out, notification.Participant{
			ProfileID:    m.ProfileID,
			ProfileEmail: m.ProfileEmail,
			UserEmail:    m.UserEmail,
		})
	}
	return out, nil
}

var (
	_ notification.ProfileLookup            = (*ProfileLookupAdapter)(nil)
	_ notification.ConversationParticipants = (*ParticipantsAdapter)(nil)
)
