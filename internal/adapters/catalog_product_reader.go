package adapters

import (
	"context"
	"fmt"

	"marketplace_backend/internal/aipipeline"
	catrepo "marketplace_backend/internal/catalog/repository"
	"marketplace_backend/internal/enhancement/ports"

	"github.com/google/uuid"
)

// CatalogProductReader adapts the catalog repository for the AI modules.
// It satisfies ports.ProductReader for enhancement and the product context
// reader used by content.
type CatalogProductReader struct {
	repo catrepo.Repository
}

// NewCatalogProductReader creates a new catalog reader adapter.
func NewCatalogProductReader(repo catrepo.Repository) *CatalogProductReader {
	return &CatalogProductReader{repo: repo}
}

var _ ports.ProductReader = (*CatalogProductReader)(nil)

// GetProduct returns one listing with its image URLs in upload order.
func (a *CatalogProductReader) GetProduct(ctx context.Context, id uuid.UUID) (ports.Product, error) {
	p, err := a.repo.GetProductByID(ctx, id)
	if err != nil {
		return ports.Product{}, err
	}
	return toPortProduct(p), nil
}

// ListProducts pages listings newest first.
func (a *CatalogProductReader) ListProducts(ctx context.Context, offset, limit int) ([]ports.Product, int, error) {
	items, total, err := a.repo.ListProducts(ctx, catrepo.ListProductsParams{Offset: offset, Limit: limit})
	if err != nil {
		return nil, 0, fmt.Errorf("catalog adapter: list products: %w", err)
	}
	out := make([]ports.Product, 0, len(items))
	for _, p := range items {
		out = append(out, toPortProduct(p))
	}
	return out, total, nil
}

// GetProductContext returns the prompt-facing fields of a listing.
func (a *CatalogProductReader) GetProductContext(ctx context.Context, id uuid.UUID) (aipipeline.ProductContext, error) {
	p, err := a.repo.GetProductByID(ctx, id)
	if err != nil {
		return aipipeline.ProductContext{}, err
	}
	return aipipeline.ProductContext{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: deref(p.Description),
		Category:    p.Category,
		PriceCents:  p.PriceCents,
	}, nil
}

func toPortProduct(p catrepo.Product) ports.Product {
	return ports.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: deref(p.Description),
		Price:       float64(p.PriceCents) / 100,
		PriceCents:  p.PriceCents,
		Category:    p.Category,
		Images:      p.ImageURLs(),
		CreatedAt:   p.CreatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
