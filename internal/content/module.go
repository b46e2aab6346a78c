// Package content provides the AI social caption module.
package content

import (
	"marketplace_backend/internal/content/handler"
	"marketplace_backend/internal/content/repository"
	"marketplace_backend/internal/content/service"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the content module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the content module.
func NewModule(pool *pgxpool.Pool, products service.ProductContextReader, generator service.CaptionGenerator, guard service.InflightGuard, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), products, generator, guard, log)
	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "content"
}

// RegisterRoutes mounts caption routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/ai-content")
	group.GET("/product/:productId", m.handler.GetByProductID)

	generate := group.Group("")
	if ctx.AIRateLimiter != nil {
		generate.Use(ctx.AIRateLimiter.RateLimit())
	}
	generate.POST("/generate/:productId", m.handler.GenerateCaptions)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
