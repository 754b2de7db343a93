// Package handler exposes the notification administration API: template
// CRUD, template images, and the delivery log.
package handler

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "imamportal_backend/internal/http"
	"imamportal_backend/internal/notification/deliverylog"
	"imamportal_backend/internal/notification/templates"
	"imamportal_backend/platform/logger"
	"imamportal_backend/platform/validator"
)

// Module is the HTTP-facing administration module for notifications.
type Module struct {
	handler    *HTTPHandler
	templates  *templates.Service
	deliveries *deliverylog.Repository
}

// NewModule creates and initializes the notification administration module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := templates.NewRepository(pool)
	svc := templates.NewService(repo, log)
	deliveries := deliverylog.NewRepository(pool)

	return &Module{
		handler:    NewHTTPHandler(svc, deliveries, val),
		templates:  svc,
		deliveries: deliveries,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification-admin" }

// TemplateSource returns the repository-backed template reader for the
// dispatch engine.
func (m *Module) TemplateSource() *templates.Service { return m.templates }

// Deliveries returns the delivery log repository.
func (m *Module) Deliveries() *deliverylog.Repository { return m.deliveries }

// RegisterRoutes mounts the administration routes behind the admin key.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin)
}

var _ apphttp.Module = (*Module)(nil)
