// Package service implements the conversation and message use cases. A sent
// message fires the notification hook; the dispatch engine fans delivery out
// to the other participants.
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"imamportal_backend/internal/messages/repository"
	"imamportal_backend/internal/notification"
	"imamportal_backend/platform/apperr"
	"imamportal_backend/platform/logger"
)

// Notifier is the notification entry point this module fires after commits.
type Notifier interface {
	Notify(table string, action notification.Action, record, previous notification.Record, explicit ...string)
}

type Service struct {
	repo     *repository.Repository
	notifier Notifier
	log      *logger.Logger
}

func New(repo *repository.Repository, notifier Notifier, log *logger.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, log: log}
}

func (s *Service) CreateConversation(ctx context.Context, topic string, participantIDs []uuid.UUID) (repository.Conversation, error) {
	if strings.TrimSpace(topic) == "" {
		return repository.Conversation{}, apperr.Validation("topic is required")
	}
	if len(participantIDs) < 2 {
		return repository.Conversation{}, apperr.Validation("a conversation needs at least two participants")
	}
	return s.repo.CreateConversation(ctx, topic, participantIDs)
}

func (s *Service) GetConversation(ctx context.Context, id uuid.UUID) (repository.Conversation, error) {
	return s.repo.GetConversation(ctx, id)
}

func (s *Service) ListConversations(ctx context.Context, limit, offset int) ([]repository.Conversation, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListConversations(ctx, limit, offset)
}

// SendMessage stores a message and requests notification of the other
// participants. The sender must belong to the conversation.
func (s *Service) SendMessage(ctx context.Context, conversationID, senderProfileID uuid.UUID, body string) (repository.Message, error) {
	if strings.TrimSpace(body) == "" {
		return repository.Message{}, apperr.Validation("message body is required")
	}

	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return repository.Message{}, err
	}
	isMember, err := s.repo.IsParticipant(ctx, conversationID, senderProfileID)
	if err != nil {
		return repository.Message{}, err
	}
	if !isMember {
		return repository.Message{}, apperr.Forbidden("sender is not a participant of this conversation")
	}

	msg, err := s.repo.CreateMessage(ctx, conversationID, senderProfileID, body)
	if err != nil {
		return repository.Message{}, err
	}

	s.notifier.Notify(notification.TableMessages, notification.ActionCreate, notification.Record{
		"id":                msg.ID.String(),
		"conversation_id":   msg.ConversationID.String(),
		"sender_profile_id": msg.SenderProfileID.String(),
		"body":              msg.Body,
		"topic":             conv.Topic,
		"created_at":        msg.CreatedAt,
	}, nil)
	return msg, nil
}

func (s *Service) ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]repository.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListMessages(ctx, conversationID, limit, offset)
}
