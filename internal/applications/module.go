// Package applications provides the aid applications bounded context:
// application forms and bonus requests filed for imam profiles.
package applications

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"imamportal_backend/internal/applications/handler"
	"imamportal_backend/internal/applications/repository"
	"imamportal_backend/internal/applications/service"
	apphttp "imamportal_backend/internal/http"
	"imamportal_backend/platform/logger"
	"imamportal_backend/platform/validator"
)

// Module is the applications bounded context implementing http.Module.
type Module struct {
	handler *handler.HTTPHandler
}

// NewModule creates and initializes the applications module.
func NewModule(pool *pgxpool.Pool, notifier service.Notifier, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, notifier, log)
	return &Module{handler: handler.NewHTTPHandler(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "applications" }

// RegisterRoutes mounts application and bonus routes behind the admin key.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterForms(ctx.Admin.Group("/application-forms"))
	m.handler.RegisterBonuses(ctx.Admin.Group("/bonus-requests"))
}

var _ apphttp.Module = (*Module)(nil)
