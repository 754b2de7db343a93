// Package messages provides the conversations bounded context module.
package messages

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "imamportal_backend/internal/http"
	"imamportal_backend/internal/messages/handler"
	"imamportal_backend/internal/messages/repository"
	"imamportal_backend/internal/messages/service"
	"imamportal_backend/platform/logger"
	"imamportal_backend/platform/validator"
)

// Module is the conversations bounded context implementing http.Module.
type Module struct {
	handler *handler.HTTPHandler
}

// NewModule creates and initializes the messages module.
func NewModule(pool *pgxpool.Pool, notifier service.Notifier, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, notifier, log)
	return &Module{handler: handler.NewHTTPHandler(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "messages" }

// RegisterRoutes mounts conversation routes behind the admin key.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/conversations"))
}

var _ apphttp.Module = (*Module)(nil)
