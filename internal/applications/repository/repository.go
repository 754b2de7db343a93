// Package repository persists aid application forms and bonus requests.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"imamportal_backend/platform/apperr"
)

const (
	opFormCreate       = "applications.repository.form_create"
	opFormGet          = "applications.repository.form_get"
	opFormList         = "applications.repository.form_list"
	opFormUpdateStatus = "applications.repository.form_update_status"
	opFormDelete       = "applications.repository.form_delete"

	opBonusCreate       = "applications.repository.bonus_create"
	opBonusGet          = "applications.repository.bonus_get"
	opBonusList         = "applications.repository.bonus_list"
	opBonusUpdateStatus = "applications.repository.bonus_update_status"
	opBonusDelete       = "applications.repository.bonus_delete"
)

// ApplicationForm is one aid application filed for an imam profile.
type ApplicationForm struct {
	ID            uuid.UUID `json:"id"`
	ImamProfileID uuid.UUID `json:"imamProfileId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StatusID      int       `json:"statusId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BonusRequest is one bonus payment request filed for an imam profile.
type BonusRequest struct {
	ID            uuid.UUID `json:"id"`
	ImamProfileID uuid.UUID `json:"imamProfileId"`
	Description   string    `json:"description"`
	AmountCents   int64     `json:"amountCents"`
	StatusID      int       `json:"statusId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

const formColumns = `id, imam_profile_id, title, description, status_id, created_at, updated_at`
const bonusColumns = `id, imam_profile_id, description, amount_cents, status_id, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanForm(row pgx.Row) (ApplicationForm, error) {
	var f ApplicationForm
	err := row.Scan(&f.ID, &f.ImamProfileID, &f.Title, &f.Description, &f.StatusID, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func scanBonus(row pgx.Row) (BonusRequest, error) {
	var b BonusRequest
	err := row.Scan(&b.ID, &b.ImamProfileID, &b.Description, &b.AmountCents, &b.StatusID, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *Repository) CreateForm(ctx context.Context, profileID uuid.UUID, title, description string, statusID int) (ApplicationForm, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO application_forms (imam_profile_id, title, description, status_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+formColumns+`
	`, profileID, title, description, statusID)

	f, err := scanForm(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ApplicationForm{}, apperr.Validation("unknown imam profile").WithOp(opFormCreate)
		}
		return ApplicationForm{}, apperr.Internal(fmt.Sprintf("create application form failed: %v", err)).WithOp(opFormCreate)
	}
	return f, nil
}

func (r *Repository) GetForm(ctx context.Context, id uuid.UUID) (ApplicationForm, error) {
	f, err := scanForm(r.pool.QueryRow(ctx, `
		SELECT `+formColumns+` FROM application_forms WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return ApplicationForm{}, apperr.NotFound("application form not found").WithOp(opFormGet)
	}
	if err != nil {
		return ApplicationForm{}, apperr.Internal(fmt.Sprintf("get application form failed: %v", err)).WithOp(opFormGet)
	}
	return f, nil
}

func (r *Repository) ListForms(ctx context.Context, limit, offset int) ([]ApplicationForm, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM application_forms`).Scan(&total); err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("count application forms failed: %v", err)).WithOp(opFormList)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+formColumns+`
		FROM application_forms
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("list application forms failed: %v", err)).WithOp(opFormList)
	}
	defer rows.Close()

	var out []ApplicationForm
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, 0, apperr.Internal(fmt.Sprintf("scan application form failed: %v", err)).WithOp(opFormList)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("iterate application forms failed: %v", err)).WithOp(opFormList)
	}
	return out, total, nil
}

func (r *Repository) UpdateFormStatus(ctx context.Context, id uuid.UUID, statusID int) (ApplicationForm, error) {
	f, err := scanForm(r.pool.QueryRow(ctx, `
		UPDATE application_forms SET status_id = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+formColumns+`
	`, id, statusID))
	if errors.Is(err, pgx.ErrNoRows) {
		return ApplicationForm{}, apperr.NotFound("application form not found").WithOp(opFormUpdateStatus)
	}
	if err != nil {
		return ApplicationForm{}, apperr.Internal(fmt.Sprintf("update application form status failed: %v", err)).WithOp(opFormUpdateStatus)
	}
	return f, nil
}

func (r *Repository) DeleteForm(ctx context.Context, id uuid.UUID) (ApplicationForm, error) {
	f, err := scanForm(r.pool.QueryRow(ctx, `
		DELETE FROM application_forms WHERE id = $1
		RETURNING `+formColumns+`
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return ApplicationForm{}, apperr.NotFound("application form not found").WithOp(opFormDelete)
	}
	if err != nil {
		return ApplicationForm{}, apperr.Internal(fmt.Sprintf("delete application form failed: %v", err)).WithOp(opFormDelete)
	}
	return f, nil
}

func (r *Repository) CreateBonus(ctx context.Context, profileID uuid.UUID, description string, amountCents int64, statusID int) (BonusRequest, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO bonus_requests (imam_profile_id, description, amount_cents, status_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+bonusColumns+`
	`, profileID, description, amountCents, statusID)

	b, err := scanBonus(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return BonusRequest{}, apperr.Validation("unknown imam profile").WithOp(opBonusCreate)
		}
		return BonusRequest{}, apperr.Internal(fmt.Sprintf("create bonus request failed: %v", err)).WithOp(opBonusCreate)
	}
	return b, nil
}

func (r *Repository) GetBonus(ctx context.Context, id uuid.UUID) (BonusRequest, error) {
	b, err := scanBonus(r.pool.QueryRow(ctx, `
		SELECT `+bonusColumns+` FROM bonus_requests WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return BonusRequest{}, apperr.NotFound("bonus request not found").WithOp(opBonusGet)
	}
	if err != nil {
		return BonusRequest{}, apperr.Internal(fmt.Sprintf("get bonus request failed: %v", err)).WithOp(opBonusGet)
	}
	return b, nil
}

func (r *Repository) ListBonuses(ctx context.Context, limit, offset int) ([]BonusRequest, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bonus_requests`).Scan(&total); err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("count bonus requests failed: %v", err)).WithOp(opBonusList)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+bonusColumns+`
		FROM bonus_requests
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("list bonus requests failed: %v", err)).WithOp(opBonusList)
	}
	defer rows.Close()

	var out []BonusRequest
	for rows.Next() {
		b, err := scanBonus(rows)
		if err != nil {
			return nil, 0, apperr.Internal(fmt.Sprintf("scan bonus request failed: %v", err)).WithOp(opBonusList)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("iterate bonus requests failed: %v", err)).WithOp(opBonusList)
	}
	return out, total, nil
}

func (r *Repository) UpdateBonusStatus(ctx context.Context, id uuid.UUID, statusID int) (BonusRequest, error) {
	b, err := scanBonus(r.pool.QueryRow(ctx, `
		UPDATE bonus_requests SET status_id = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+bonusColumns+`
	`, id, statusID))
	if errors.Is(err, pgx.ErrNoRows) {
		return BonusRequest{}, apperr.NotFound("bonus request not found").WithOp(opBonusUpdateStatus)
	}
	if err != nil {
		return BonusRequest{}, apperr.Internal(fmt.Sprintf("update bonus request status failed: %v", err)).WithOp(opBonusUpdateStatus)
	}
	return b, nil
}

func (r *Repository) DeleteBonus(ctx context.Context, id uuid.UUID) (BonusRequest, error) {
	b, err := scanBonus(r.pool.QueryRow(ctx, `
		DELETE FROM bonus_requests WHERE id = $1
		RETURNING `+bonusColumns+`
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return BonusRequest{}, apperr.NotFound("bonus request not found").WithOp(opBonusDelete)
	}
	if err != nil {
		return BonusRequest{}, apperr.Internal(fmt.Sprintf("delete bonus request failed: %v", err)).WithOp(opBonusDelete)
	}
	return b, nil
}
