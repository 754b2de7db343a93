// Package repository persists imam profile records, the primary case files
// of the platform.
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
	opCreate       = "profiles.repository.create"
	opGet          = "profiles.repository.get"
	opList         = "profiles.repository.list"
	opUpdate       = "profiles.repository.update"
	opUpdateStatus = "profiles.repository.update_status"
	opDelete       = "profiles.repository.delete"

	errNotFoundMsg = "imam profile not found"
)

// Profile is one imam case file.
type Profile struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	FileNumber string    `json:"fileNumber"`
	StatusID   int       `json:"statusId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CreateParams carries the writable fields for a new profile.
type CreateParams struct {
	Name       string
	Surname    string
	Email      string
	Phone      *string
	FileNumber string
	StatusID   int
}

// UpdateParams carries the writable fields for a profile update.
type UpdateParams struct {
	Name     string
	Surname  string
	Email    string
	Phone    *string
	StatusID int
}

const profileColumns = `id, name, surname, email, phone, file_number, status_id, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Name, &p.Surname, &p.Email, &p.Phone, &p.FileNumber,
		&p.StatusID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (Profile, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO imam_profiles (name, surname, email, phone, file_number, status_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+profileColumns+`
	`, p.Name, p.Surname, p.Email, p.Phone, p.FileNumber, p.StatusID)

	created, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Profile{}, apperr.Conflict("a profile with this file number already exists").WithOp(opCreate)
		}
		return Profile{}, apperr.Internal(fmt.Sprintf("create profile failed: %v", err)).WithOp(opCreate)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Profile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+` FROM imam_profiles WHERE id = $1
	`, id)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, apperr.NotFound(errNotFoundMsg).WithOp(opGet)
	}
	if err != nil {
		return Profile{}, apperr.Internal(fmt.Sprintf("get profile failed: %v", err)).WithOp(opGet)
	}
	return p, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]Profile, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM imam_profiles`).Scan(&total); err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("count profiles failed: %v", err)).WithOp(opList)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+profileColumns+`
		FROM imam_profiles
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("list profiles failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, apperr.Internal(fmt.Sprintf("scan profile failed: %v", err)).WithOp(opList)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("iterate profiles failed: %v", err)).WithOp(opList)
	}
	return out, total, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (Profile, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE imam_profiles
		SET name = $2, surname = $3, email = $4, phone = $5, status_id = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns+`
	`, id, p.Name, p.Surname, p.Email, p.Phone, p.StatusID)

	updated, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, apperr.NotFound(errNotFoundMsg).WithOp(opUpdate)
	}
	if err != nil {
		return Profile{}, apperr.Internal(fmt.Sprintf("update profile failed: %v", err)).WithOp(opUpdate)
	}
	return updated, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, statusID int) (Profile, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE imam_profiles
		SET status_id = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns+`
	`, id, statusID)

	updated, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, apperr.NotFound(errNotFoundMsg).WithOp(opUpdateStatus)
	}
	if err != nil {
		return Profile{}, apperr.Internal(fmt.Sprintf("update profile status failed: %v", err)).WithOp(opUpdateStatus)
	}
	return updated, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (Profile, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM imam_profiles WHERE id = $1
		RETURNING `+profileColumns+`
	`, id)
	deleted, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, apperr.NotFound(errNotFoundMsg).WithOp(opDelete)
	}
	if err != nil {
		return Profile{}, apperr.Internal(fmt.Sprintf("delete profile failed: %v", err)).WithOp(opDelete)
	}
	return deleted, nil
}
