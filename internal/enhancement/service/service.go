package service

import (
	"context"
	"errors"
	"fmt"

	"marketplace_backend/internal/aipipeline"
	"marketplace_backend/internal/enhancement/ports"
	"marketplace_backend/internal/enhancement/repository"
	"marketplace_backend/internal/enhancement/transport"
	"marketplace_backend/platform/ai/llmjson"
	"marketplace_backend/platform/ai/provider"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/inflight"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	opEnhanceImages       = "enhance-image"
	opGenerateSuggestions = "generate-suggestions"

	msgNoProductImage = "No product image available"
)

// ImageEnhancer produces enhancement pairs for a batch of image URLs.
type ImageEnhancer interface {
	EnhanceAll(ctx context.Context, product aipipeline.ProductContext, urls []string) (aipipeline.BatchResult, error)
}

// SuggestionGenerator produces marketing suggestions for a product.
type SuggestionGenerator interface {
	Suggestions(ctx context.Context, product aipipeline.ProductContext, image *provider.Image) (aipipeline.SuggestionResult, error)
}

// Deps bundles the service collaborators.
type Deps struct {
	Repo      repository.Repository
	Products  ports.ProductReader
	Enhancer  ImageEnhancer
	Suggester SuggestionGenerator
	Fetcher   aipipeline.ImageFetcher
	Queue     ports.JobQueue
	Guard     ports.InflightGuard
	AutoQueue bool
	Log       *logger.Logger
}

// Service orchestrates the enhancement and suggestion pipelines.
type Service struct {
	deps Deps
}

// New creates a new enhancement service.
func New(deps Deps) *Service {
	return &Service{deps: deps}
}

// SetJobQueue enables ?async=true and auto-enqueue on product creation.
func (s *Service) SetJobQueue(queue ports.JobQueue) {
	s.deps.Queue = queue
}

// EnhanceImages runs the image pipeline over every product image and merges
// the results into the stored document.
func (s *Service) EnhanceImages(ctx context.Context, productID uuid.UUID) (transport.EnhanceImagesResponse, error) {
	release, err := s.acquire(ctx, opEnhanceImages, productID)
	if err != nil {
		return transport.EnhanceImagesResponse{}, err
	}
	defer release()

	product, err := s.deps.Products.GetProduct(ctx, productID)
	if err != nil {
		return transport.EnhanceImagesResponse{}, err
	}
	if len(product.Images) == 0 {
		return transport.EnhanceImagesResponse{}, apperr.BadRequest(msgNoProductImage)
	}

	result, err := s.deps.Enhancer.EnhanceAll(ctx, productContext(product), product.Images)
	if err != nil {
		return transport.EnhanceImagesResponse{}, err
	}

	stored, err := s.deps.Repo.UpdateEnhancedImages(ctx, productID, func(existing []aipipeline.EnhancedImagePair) []aipipeline.EnhancedImagePair {
		return MergeEnhancedImages(existing, product.Images, result.Pairs)
	})
	if err != nil {
		return transport.EnhanceImagesResponse{}, err
	}

	s.deps.Log.WithProductID(productID.String()).Info("product images enhanced",
		"pairs", len(result.Pairs), "failures", len(result.Failures))

	return transport.EnhanceImagesResponse{
		ProductID:      productID,
		EnhancedImages: stored.EnhancedImages,
		Failures:       result.Failures,
	}, nil
}

// GenerateSuggestions asks the provider for marketing suggestions using the
// first product image and stores both the structured and raw forms.
func (s *Service) GenerateSuggestions(ctx context.Context, productID uuid.UUID) (transport.SuggestionsResponse, error) {
	release, err := s.acquire(ctx, opGenerateSuggestions, productID)
	if err != nil {
		return transport.SuggestionsResponse{}, err
	}
	defer release()

	product, err := s.deps.Products.GetProduct(ctx, productID)
	if err != nil {
		return transport.SuggestionsResponse{}, err
	}
	if len(product.Images) == 0 {
		return transport.SuggestionsResponse{}, apperr.BadRequest(msgNoProductImage)
	}

	image, err := s.deps.Fetcher.Fetch(ctx, product.Images[0])
	if err != nil {
		if ctx.Err() != nil {
			return transport.SuggestionsResponse{}, ctx.Err()
		}
		return transport.SuggestionsResponse{}, apperr.Wrap(apperr.KindUpstream, "could not load product image", err).WithDetails(err.Error())
	}

	result, err := s.deps.Suggester.Suggestions(ctx, productContext(product), image)
	if err != nil {
		return transport.SuggestionsResponse{}, err
	}

	stored, err := s.deps.Repo.SaveSuggestions(ctx, productID, result.Raw, result.Document)
	if err != nil {
		return transport.SuggestionsResponse{}, err
	}

	return toSuggestionsResponse(stored), nil
}

// QueueEnhanceImages hands image enhancement to the worker.
func (s *Service) QueueEnhanceImages(ctx context.Context, productID uuid.UUID) (transport.QueuedResponse, error) {
	return s.queue(ctx, productID, func(ctx context.Context, id uuid.UUID) error {
		return s.deps.Queue.EnqueueEnhanceImages(ctx, id)
	})
}

// QueueGenerateSuggestions hands suggestion generation to the worker.
func (s *Service) QueueGenerateSuggestions(ctx context.Context, productID uuid.UUID) (transport.QueuedResponse, error) {
	return s.queue(ctx, productID, func(ctx context.Context, id uuid.UUID) error {
		return s.deps.Queue.EnqueueGenerateSuggestions(ctx, id)
	})
}

func (s *Service) queue(ctx context.Context, productID uuid.UUID, enqueue func(context.Context, uuid.UUID) error) (transport.QueuedResponse, error) {
	if s.deps.Queue == nil {
		return transport.QueuedResponse{}, apperr.Unavailable("background processing is not configured")
	}
	product, err := s.deps.Products.GetProduct(ctx, productID)
	if err != nil {
		return transport.QueuedResponse{}, err
	}
	if len(product.Images) == 0 {
		return transport.QueuedResponse{}, apperr.BadRequest(msgNoProductImage)
	}
	if err := enqueue(ctx, productID); err != nil {
		return transport.QueuedResponse{}, fmt.Errorf("queue ai task: %w", err)
	}
	return transport.QueuedResponse{ProductID: productID, Queued: true}, nil
}

// ProcessEnhanceImages is the worker entry point for queued enhancement.
func (s *Service) ProcessEnhanceImages(ctx context.Context, productID uuid.UUID) error {
	_, err := s.EnhanceImages(ctx, productID)
	return err
}

// ProcessGenerateSuggestions is the worker entry point for queued suggestions.
func (s *Service) ProcessGenerateSuggestions(ctx context.Context, productID uuid.UUID) error {
	_, err := s.GenerateSuggestions(ctx, productID)
	return err
}

// OnProductCreated queues both AI stages for a new listing when enabled.
func (s *Service) OnProductCreated(ctx context.Context, productID uuid.UUID, imageCount int) error {
	if !s.deps.AutoQueue || s.deps.Queue == nil || imageCount == 0 {
		return nil
	}
	if err := s.deps.Queue.EnqueueEnhanceImages(ctx, productID); err != nil {
		return err
	}
	return s.deps.Queue.EnqueueGenerateSuggestions(ctx, productID)
}

// GetProductWithEnhancement loads the product and its AI document in parallel.
func (s *Service) GetProductWithEnhancement(ctx context.Context, productID uuid.UUID) (transport.ProductEnhancementResponse, error) {
	var product ports.Product
	var enhancement *repository.Enhancement

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.deps.Products.GetProduct(gctx, productID)
		product = p
		return err
	})
	g.Go(func() error {
		e, err := s.deps.Repo.GetByProductID(gctx, productID)
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		enhancement = &e
		return nil
	})
	if err := g.Wait(); err != nil {
		return transport.ProductEnhancementResponse{}, err
	}

	return transport.ProductEnhancementResponse{Product: product, AIEnhancement: enhancement}, nil
}

// ListProductsWithEnhancement pages products and attaches their AI documents.
func (s *Service) ListProductsWithEnhancement(ctx context.Context, req transport.ListRequest) (transport.ProductEnhancementListResponse, error) {
	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	products, total, err := s.deps.Products.ListProducts(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return transport.ProductEnhancementListResponse{}, err
	}

	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	docs, err := s.deps.Repo.GetByProductIDs(ctx, ids)
	if err != nil {
		return transport.ProductEnhancementListResponse{}, err
	}

	resp := transport.ProductEnhancementListResponse{
		Items:      make([]transport.ProductEnhancementResponse, 0, len(products)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	for _, p := range products {
		item := transport.ProductEnhancementResponse{Product: p}
		if doc, ok := docs[p.ID]; ok {
			item.AIEnhancement = &doc
		}
		resp.Items = append(resp.Items, item)
	}
	return resp, nil
}

// BackfillReport summarizes a suggestion re-normalization run.
type BackfillReport struct {
	Scanned int
	Updated int
	Empty   int
}

// BackfillSuggestions re-parses every stored raw suggestion text with the
// current repair and mapping rules. No provider is called.
func (s *Service) BackfillSuggestions(ctx context.Context, dryRun bool, limit int) (BackfillReport, error) {
	rows, err := s.deps.Repo.ListRawSuggestions(ctx, limit)
	if err != nil {
		return BackfillReport{}, err
	}

	var report BackfillReport
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		recovered := llmjson.Repair(s.deps.Log, row.Raw)
		if len(recovered) == 0 {
			report.Empty++
		}
		doc := aipipeline.MapSuggestions(recovered)
		if dryRun {
			continue
		}
		if err := s.deps.Repo.UpdateSuggestionDocument(ctx, row.ProductID, doc); err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				continue
			}
			return report, err
		}
		report.Updated++
	}

	s.deps.Log.Info("suggestion backfill finished",
		"dryRun", dryRun, "scanned", report.Scanned, "updated", report.Updated, "empty", report.Empty)
	return report, nil
}

func (s *Service) acquire(ctx context.Context, operation string, productID uuid.UUID) (func(), error) {
	if s.deps.Guard == nil {
		return func() {}, nil
	}
	release, err := s.deps.Guard.Acquire(ctx, operation, productID.String())
	if errors.Is(err, inflight.ErrBusy) {
		return nil, apperr.Conflict("a generation for this product is already running")
	}
	if err != nil {
		// Redis outages degrade to the advisory lock alone.
		s.deps.Log.Warn("inflight guard unavailable", "operation", operation, "error", err)
		return func() {}, nil
	}
	return release, nil
}

func productContext(p ports.Product) aipipeline.ProductContext {
	return aipipeline.ProductContext{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		PriceCents:  p.PriceCents,
	}
}

func toSuggestionsResponse(e repository.Enhancement) transport.SuggestionsResponse {
	return transport.SuggestionsResponse{
		ProductID:             e.ProductID,
		SuggestionsBox:        e.SuggestionsBox,
		SuggestedTitles:       e.SuggestedTitles,
		SuggestedDescriptions: e.SuggestedDescriptions,
		SuggestedTags:         e.SuggestedTags,
		SuggestedPrices:       e.SuggestedPrices,
		RawSuggestionsText:    e.RawSuggestionsText,
	}
}
