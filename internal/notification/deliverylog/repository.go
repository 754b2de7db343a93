// Package deliverylog persists per-recipient delivery outcomes. It is a
// server-side observability log, not a queue: nothing is ever re-driven
// from it.
package deliverylog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"imamportal_backend/internal/notification"
	"imamportal_backend/platform/apperr"
)

const (
	opInsert = "notification.deliverylog.repository.insert"
	opList   = "notification.deliverylog.repository.list"
	opPurge  = "notification.deliverylog.repository.purge"
)

// Entry is one recorded delivery attempt.
type Entry struct {
	ID           int64     `json:"id"`
	TableName    string    `json:"tableName"`
	Action       string    `json:"action"`
	Recipient    string    `json:"recipient"`
	TemplateName string    `json:"templateName"`
	Success      bool      `json:"success"`
	Error        *string   `json:"error,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertResults records one dispatch run's outcomes in a single batch.
func (r *Repository) InsertResults(ctx context.Context, table string, action notification.Action, results []notification.DeliveryResult) error {
	if len(results) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, res := range results {
		var errText *string
		if res.Err != nil {
			msg := res.Err.Error()
			errText = &msg
		}
		batch.Queue(`
			INSERT INTO notification_deliveries
				(table_name, action, recipient, template_name, success, error)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, table, string(action), res.Recipient, res.TemplateName, res.Success, errText)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range results {
		if _, err := br.Exec(); err != nil {
			return apperr.Internal(fmt.Sprintf("insert delivery results failed: %v", err)).WithOp(opInsert)
		}
	}
	return nil
}

// List returns recent delivery entries, newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Entry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notification_deliveries`).Scan(&total); err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("count deliveries failed: %v", err)).WithOp(opList)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, table_name, action, recipient, template_name, success, error, created_at
		FROM notification_deliveries
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("list deliveries failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TableName, &e.Action, &e.Recipient, &e.TemplateName,
			&e.Success, &e.Error, &e.CreatedAt); err != nil {
			return nil, 0, apperr.Internal(fmt.Sprintf("scan delivery failed: %v", err)).WithOp(opList)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("iterate deliveries failed: %v", err)).WithOp(opList)
	}
	return out, total, nil
}

// PurgeOlderThan deletes entries past the retention window and returns how
// many rows were removed.
func (r *Repository) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM notification_deliveries WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return 0, apperr.Internal(fmt.Sprintf("purge deliveries failed: %v", err)).WithOp(opPurge)
	}
	return tag.RowsAffected(), nil
}
