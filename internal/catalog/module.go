// Package catalog provides the seller listings module.
package catalog

import (
	"marketplace_backend/internal/adapters/storage"
	"marketplace_backend/internal/catalog/handler"
	"marketplace_backend/internal/catalog/repository"
	"marketplace_backend/internal/catalog/service"
	"marketplace_backend/internal/events"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the catalog module.
func NewModule(pool *pgxpool.Pool, storageSvc storage.StorageService, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, storageSvc, bus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for cross-module adapters.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/products", m.handler.CreateProduct)
	ctx.V1.GET("/products", m.handler.ListProducts)
	ctx.V1.GET("/products/:id", m.handler.GetProductByID)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
