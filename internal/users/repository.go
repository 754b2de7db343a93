// Package users persists portal user accounts. Authentication lives in the
// gateway; this service only needs the roster, most importantly the active
// administrator emails for notification routing.
package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"imamportal_backend/platform/apperr"
)

const opListAdminEmails = "users.repository.list_admin_emails"

// RoleAdmin marks accounts that receive admin-slot notifications.
const RoleAdmin = "admin"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListAdminEmails returns the non-empty emails of active administrators.
func (r *Repository) ListAdminEmails(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT email FROM users
		WHERE role = $1 AND active AND email <> ''
		ORDER BY email
	`, RoleAdmin)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list admin emails failed: %v", err)).WithOp(opListAdminEmails)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan admin email failed: %v", err)).WithOp(opListAdminEmails)
		}
		out = append(out, email)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate admin emails failed: %v", err)).WithOp(opListAdminEmails)
	}
	return out, nil
}
