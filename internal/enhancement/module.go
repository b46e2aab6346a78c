// Package enhancement provides the AI image enhancement and suggestions module.
package enhancement

import (
	"context"

	"marketplace_backend/internal/aipipeline"
	"marketplace_backend/internal/enhancement/handler"
	"marketplace_backend/internal/enhancement/ports"
	"marketplace_backend/internal/enhancement/repository"
	"marketplace_backend/internal/enhancement/service"
	"marketplace_backend/internal/events"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps are the pipeline pieces the composition root builds for this module.
type Deps struct {
	Products  ports.ProductReader
	Enhancer  *aipipeline.ImageEnhancer
	Suggester *aipipeline.TextGenerator
	Fetcher   aipipeline.ImageFetcher
	Guard     ports.InflightGuard
	AutoQueue bool
}

// Module is the enhancement module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

// NewModule creates and initializes the enhancement module.
func NewModule(pool *pgxpool.Pool, deps Deps, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(service.Deps{
		Repo:      repository.New(pool),
		Products:  deps.Products,
		Enhancer:  deps.Enhancer,
		Suggester: deps.Suggester,
		Fetcher:   deps.Fetcher,
		Guard:     deps.Guard,
		AutoQueue: deps.AutoQueue,
		Log:       log,
	})

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "enhancement"
}

// Service returns the service layer for the worker and CLI.
func (m *Module) Service() *service.Service {
	return m.service
}

// SetJobQueue wires the background task queue.
func (m *Module) SetJobQueue(queue ports.JobQueue) {
	m.service.SetJobQueue(queue)
}

// RegisterRoutes mounts AI enhancement routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ai := ctx.V1.Group("/ai")
	ai.GET("/product/:id", m.handler.GetProductWithEnhancement)
	ai.GET("/products", m.handler.ListProductsWithEnhancement)

	generate := ai.Group("")
	if ctx.AIRateLimiter != nil {
		generate.Use(ctx.AIRateLimiter.RateLimit())
	}
	generate.POST("/enhance-image/:id", m.handler.EnhanceImages)
	generate.POST("/generate-suggestions/:id", m.handler.GenerateSuggestions)
}

// RegisterHandlers subscribes to catalog events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ProductCreated{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ProductCreated:
		if err := m.service.OnProductCreated(ctx, e.ProductID, e.ImageCount); err != nil {
			m.log.WithProductID(e.ProductID.String()).Warn("failed to queue ai tasks for new product", "error", err)
			return err
		}
		return nil
	default:
		return nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
