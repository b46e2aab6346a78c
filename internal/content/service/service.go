package service

import (
	"context"
	"errors"

	"marketplace_backend/internal/aipipeline"
	"marketplace_backend/internal/content/repository"
	"marketplace_backend/internal/content/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/inflight"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
)

const opGenerateCaptions = "generate-captions"

// ProductContextReader loads the listing text captions are written from.
type ProductContextReader interface {
	GetProductContext(ctx context.Context, id uuid.UUID) (aipipeline.ProductContext, error)
}

// CaptionGenerator produces captions for a product.
type CaptionGenerator interface {
	Captions(ctx context.Context, product aipipeline.ProductContext) (aipipeline.CaptionResult, error)
}

// InflightGuard rejects a second concurrent run of the same operation.
type InflightGuard interface {
	Acquire(ctx context.Context, operation, id string) (release func(), err error)
}

// Service generates and serves social captions.
type Service struct {
	repo      repository.Repository
	products  ProductContextReader
	generator CaptionGenerator
	guard     InflightGuard
	log       *logger.Logger
}

// New creates a new content service. guard may be nil.
func New(repo repository.Repository, products ProductContextReader, generator CaptionGenerator, guard InflightGuard, log *logger.Logger) *Service {
	return &Service{repo: repo, products: products, generator: generator, guard: guard, log: log}
}

// GenerateCaptions writes fresh captions for a product and stores them with the raw provider text.
func (s *Service) GenerateCaptions(ctx context.Context, productID uuid.UUID) (transport.GenerateCaptionsResponse, error) {
	if s.guard != nil {
		release, err := s.guard.Acquire(ctx, opGenerateCaptions, productID.String())
		switch {
		case errors.Is(err, inflight.ErrBusy):
			return transport.GenerateCaptionsResponse{}, apperr.Conflict("captions for this product are already being generated")
		case err != nil:
			s.log.Warn("inflight guard unavailable", "operation", opGenerateCaptions, "error", err)
		default:
			defer release()
		}
	}

	product, err := s.products.GetProductContext(ctx, productID)
	if err != nil {
		return transport.GenerateCaptionsResponse{}, err
	}

	result, err := s.generator.Captions(ctx, product)
	if err != nil {
		return transport.GenerateCaptionsResponse{}, err
	}

	stored, err := s.repo.Upsert(ctx, productID, result.Captions, result.Raw)
	if err != nil {
		return transport.GenerateCaptionsResponse{}, err
	}

	s.log.WithProductID(productID.String()).Info("captions generated",
		"instagram", len(stored.Captions.Instagram),
		"facebook", len(stored.Captions.Facebook),
		"whatsapp", len(stored.Captions.WhatsApp))

	return transport.GenerateCaptionsResponse{
		Success:   true,
		Message:   "AI content generated successfully",
		ProductID: productID,
		Captions:  stored.Captions,
	}, nil
}

// GetByProductID returns the stored caption document.
func (s *Service) GetByProductID(ctx context.Context, productID uuid.UUID) (repository.Content, error) {
	return s.repo.GetByProductID(ctx, productID)
}
