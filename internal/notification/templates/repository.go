// Package templates owns persistence and administration of notification
// templates. The dispatch engine only reads them through the read-only
// source interface.
package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"imamportal_backend/internal/notification"
	"imamportal_backend/platform/apperr"
)

const (
	opCreate       = "notification.templates.repository.create"
	opUpdate       = "notification.templates.repository.update"
	opDelete       = "notification.templates.repository.delete"
	opGet          = "notification.templates.repository.get"
	opList         = "notification.templates.repository.list"
	opFindActive   = "notification.templates.repository.find_active"
	opGetImage     = "notification.templates.repository.get_image"
	opStoreImage   = "notification.templates.repository.store_image"
	errNotFoundMsg = "notification template not found"
)

const templateColumns = `id, name, recipient_type, triggers, subject, body, active,
	login_url, image_show_link, (image_data IS NOT NULL), created_at, updated_at`

// TemplateParams carries the writable fields of a template.
type TemplateParams struct {
	Name          string
	RecipientType notification.RecipientType
	Triggers      []notification.TriggerRule
	Subject       string
	Body          string
	Active        bool
	LoginURL      *string
	ImageShowLink *string
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTemplate reads one template row. A row whose trigger JSON does not
// parse is returned with no triggers, so it matches nothing but does not
// abort the templates around it.
func scanTemplate(row rowScanner) (notification.Template, error) {
	var (
		t        notification.Template
		rt       string
		triggers []byte
	)
	err := row.Scan(&t.ID, &t.Name, &rt, &triggers, &t.Subject, &t.Body, &t.Active,
		&t.LoginURL, &t.ImageShowLink, &t.HasImageData, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return notification.Template{}, err
	}
	t.RecipientType = notification.RecipientType(rt)
	if len(triggers) > 0 {
		if err := json.Unmarshal(triggers, &t.Triggers); err != nil {
			t.Triggers = nil
		}
	}
	return t, nil
}

// FindActiveByRecipientType returns active templates for one recipient slot,
// most recently created first.
func (r *Repository) FindActiveByRecipientType(ctx context.Context, rt notification.RecipientType) ([]notification.Template, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+templateColumns+`
		FROM notification_templates
		WHERE active AND recipient_type = $1
		ORDER BY id DESC
	`, string(rt))
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("find active templates failed: %v", err)).WithOp(opFindActive)
	}
	defer rows.Close()

	var out []notification.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan template failed: %v", err)).WithOp(opFindActive)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate templates failed: %v", err)).WithOp(opFindActive)
	}
	return out, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (notification.Template, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+templateColumns+`
		FROM notification_templates
		WHERE id = $1
	`, id)
	t, err := scanTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return notification.Template{}, apperr.NotFound(errNotFoundMsg).WithOp(opGet)
	}
	if err != nil {
		return notification.Template{}, apperr.Internal(fmt.Sprintf("get template failed: %v", err)).WithOp(opGet)
	}
	return t, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]notification.Template, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notification_templates`).Scan(&total); err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("count templates failed: %v", err)).WithOp(opList)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+templateColumns+`
		FROM notification_templates
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("list templates failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	var out []notification.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, 0, apperr.Internal(fmt.Sprintf("scan template failed: %v", err)).WithOp(opList)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("iterate templates failed: %v", err)).WithOp(opList)
	}
	return out, total, nil
}

func (r *Repository) Create(ctx context.Context, p TemplateParams) (notification.Template, error) {
	triggers, err := json.Marshal(p.Triggers)
	if err != nil {
		return notification.Template{}, apperr.Internal(fmt.Sprintf("encode triggers failed: %v", err)).WithOp(opCreate)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO notification_templates
			(name, recipient_type, triggers, subject, body, active, login_url, image_show_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+templateColumns+`
	`, p.Name, string(p.RecipientType), triggers, p.Subject, p.Body, p.Active, p.LoginURL, p.ImageShowLink)

	t, err := scanTemplate(row)
	if err != nil {
		return notification.Template{}, apperr.Internal(fmt.Sprintf("create template failed: %v", err)).WithOp(opCreate)
	}
	return t, nil
}

func (r *Repository) Update(ctx context.Context, id int64, p TemplateParams) (notification.Template, error) {
	triggers, err := json.Marshal(p.Triggers)
	if err != nil {
		return notification.Template{}, apperr.Internal(fmt.Sprintf("encode triggers failed: %v", err)).WithOp(opUpdate)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE notification_templates
		SET name = $2, recipient_type = $3, triggers = $4, subject = $5, body = $6,
			active = $7, login_url = $8, image_show_link = $9, updated_at = now()
		WHERE id = $1
		RETURNING `+templateColumns+`
	`, id, p.Name, string(p.RecipientType), triggers, p.Subject, p.Body, p.Active, p.LoginURL, p.ImageShowLink)

	t, err := scanTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return notification.Template{}, apperr.NotFound(errNotFoundMsg).WithOp(opUpdate)
	}
	if err != nil {
		return notification.Template{}, apperr.Internal(fmt.Sprintf("update template failed: %v", err)).WithOp(opUpdate)
	}
	return t, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notification_templates WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("delete template failed: %v", err)).WithOp(opDelete)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(errNotFoundMsg).WithOp(opDelete)
	}
	return nil
}

// GetImage returns the stored background image bytes and mime type.
func (r *Repository) GetImage(ctx context.Context, id int64) ([]byte, string, error) {
	var (
		data []byte
		mime *string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT image_data, image_mime FROM notification_templates WHERE id = $1
	`, id).Scan(&data, &mime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", apperr.NotFound(errNotFoundMsg).WithOp(opGetImage)
	}
	if err != nil {
		return nil, "", apperr.Internal(fmt.Sprintf("get template image failed: %v", err)).WithOp(opGetImage)
	}
	if len(data) == 0 {
		return nil, "", apperr.NotFound("template has no image").WithOp(opGetImage)
	}
	contentType := "application/octet-stream"
	if mime != nil && *mime != "" {
		contentType = *mime
	}
	return data, contentType, nil
}

// StoreImage replaces the stored background image.
func (r *Repository) StoreImage(ctx context.Context, id int64, data []byte, mime string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notification_templates SET image_data = $2, image_mime = $3, updated_at = now()
		WHERE id = $1
	`, id, data, mime)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("store template image failed: %v", err)).WithOp(opStoreImage)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(errNotFoundMsg).WithOp(opStoreImage)
	}
	return nil
}
