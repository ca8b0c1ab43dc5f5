package loans

import (
	"loanflow_backend/internal/events"
	apphttp "loanflow_backend/internal/http"
	"loanflow_backend/internal/loans/handler"
	"loanflow_backend/internal/loans/repository"
	"loanflow_backend/internal/loans/service"
	"loanflow_backend/platform/config"
	"loanflow_backend/platform/logger"
	"loanflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the loans bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the loans module with all its dependencies.
func NewModule(pool *pgxpool.Pool, scheduler StageScheduler, bus events.Bus, cfg config.PipelineConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, scheduler, bus, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "loans"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts loan application routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/loans")
	group.POST("", m.handler.Submit)
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.Get)
	group.GET("/:id/activities", m.handler.ListActivities)
	group.POST("/:id/cancel", m.handler.Cancel)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
