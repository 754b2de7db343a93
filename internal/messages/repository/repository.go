// Package repository persists conversations, their participants, and
// messages.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"imamportal_backend/platform/apperr"
)

const (
	opCreateConversation = "messages.repository.create_conversation"
	opGetConversation    = "messages.repository.get_conversation"
	opListConversations  = "messages.repository.list_conversations"
	opListParticipants   = "messages.repository.list_participants"
	opCreateMessage      = "messages.repository.create_message"
	opListMessages       = "messages.repository.list_messages"
)

// Conversation groups messages between a set of imam profiles.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"createdAt"`
}

// ParticipantInfo is one conversation member with its candidate addresses.
type ParticipantInfo struct {
	ProfileID    uuid.UUID
	ProfileEmail string
	UserEmail    string
}

// Message is one message in a conversation.
type Message struct {
	ID              uuid.UUID `json:"id"`
	ConversationID  uuid.UUID `json:"conversationId"`
	SenderProfileID uuid.UUID `json:"senderProfileId"`
	Body            string    `json:"body"`
	CreatedAt       time.Time `json:"createdAt"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateConversation inserts the conversation and its participant set in one
// transaction.
func (r *Repository) CreateConversation(ctx context.Context, topic string, participantIDs []uuid.UUID) (Conversation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Conversation{}, apperr.Internal(fmt.Sprintf("begin conversation tx failed: %v", err)).WithOp(opCreateConversation)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var c Conversation
	err = tx.QueryRow(ctx, `
		INSERT INTO conversations (topic) VALUES ($1)
		RETURNING id, topic, created_at
	`, topic).Scan(&c.ID, &c.Topic, &c.CreatedAt)
	if err != nil {
		return Conversation{}, apperr.Internal(fmt.Sprintf("create conversation failed: %v", err)).WithOp(opCreateConversation)
	}

	for _, pid := range participantIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO conversation_participants (conversation_id, profile_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING
		`, c.ID, pid); err != nil {
			return Conversation{}, apperr.Internal(fmt.Sprintf("add participant failed: %v", err)).WithOp(opCreateConversation)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Conversation{}, apperr.Internal(fmt.Sprintf("commit conversation failed: %v", err)).WithOp(opCreateConversation)
	}
	return c, nil
}

func (r *Repository) GetConversation(ctx context.Context, id uuid.UUID) (Conversation, error) {
	var c Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id, topic, created_at FROM conversations WHERE id = $1
	`, id).Scan(&c.ID, &c.Topic, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, apperr.NotFound("conversation not found").WithOp(opGetConversation)
	}
	if err != nil {
		return Conversation{}, apperr.Internal(fmt.Sprintf("get conversation failed: %v", err)).WithOp(opGetConversation)
	}
	return c, nil
}

func (r *Repository) ListConversations(ctx context.Context, limit, offset int) ([]Conversation, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&total); err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("count conversations failed: %v", err)).WithOp(opListConversations)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, topic, created_at FROM conversations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("list conversations failed: %v", err)).WithOp(opListConversations)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.Topic, &c.CreatedAt); err != nil {
			return nil, 0, apperr.Internal(fmt.Sprintf("scan conversation failed: %v", err)).WithOp(opListConversations)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("iterate conversations failed: %v", err)).WithOp(opListConversations)
	}
	return out, total, nil
}

// ListParticipants returns every member of a conversation with the profile
// email and, when a portal account is linked, the account email.
func (r *Repository) ListParticipants(ctx context.Context, conversationID uuid.UUID) ([]ParticipantInfo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT cp.profile_id, COALESCE(p.email, ''), COALESCE(u.email, '')
		FROM conversation_participants cp
		LEFT JOIN imam_profiles p ON p.id = cp.profile_id
		LEFT JOIN users u ON u.imam_profile_id = cp.profile_id
		WHERE cp.conversation_id = $1
		ORDER BY cp.profile_id
	`, conversationID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list participants failed: %v", err)).WithOp(opListParticipants)
	}
	defer rows.Close()

	var out []ParticipantInfo
	for rows.Next() {
		var p ParticipantInfo
		if err := rows.Scan(&p.ProfileID, &p.ProfileEmail, &p.UserEmail); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan participant failed: %v", err)).WithOp(opListParticipants)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate participants failed: %v", err)).WithOp(opListParticipants)
	}
	return out, nil
}

// IsParticipant reports whether the profile belongs to the conversation.
func (r *Repository) IsParticipant(ctx context.Context, conversationID, profileID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM conversation_participants
			WHERE conversation_id = $1 AND profile_id = $2
		)
	`, conversationID, profileID).Scan(&exists)
	if err != nil {
		return false, apperr.Internal(fmt.Sprintf("check participant failed: %v", err)).WithOp(opListParticipants)
	}
	return exists, nil
}

func (r *Repository) CreateMessage(ctx context.Context, conversationID, senderProfileID uuid.UUID, body string) (Message, error) {
	var m Message
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_profile_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, conversation_id, sender_profile_id, body, created_at
	`, conversationID, senderProfileID, body).Scan(&m.ID, &m.ConversationID, &m.SenderProfileID, &m.Body, &m.CreatedAt)
	if err != nil {
		return Message{}, apperr.Internal(fmt.Sprintf("create message failed: %v", err)).WithOp(opCreateMessage)
	}
	return m, nil
}

func (r *Repository) ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, conversation_id, sender_profile_id, body, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list messages failed: %v", err)).WithOp(opListMessages)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderProfileID, &m.Body, &m.CreatedAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan message failed: %v", err)).WithOp(opListMessages)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate messages failed: %v", err)).WithOp(opListMessages)
	}
	return out, nil
}
