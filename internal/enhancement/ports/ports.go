// Package ports defines what the enhancement module needs from other modules.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is the read-only listing view the AI stages work from.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	PriceCents  int64     `json:"priceCents"`
	Category    string    `json:"category"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProductReader loads listings owned by the catalog module.
type ProductReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
	ListProducts(ctx context.Context, offset, limit int) ([]Product, int, error)
}

// JobQueue hands AI work to the background worker.
type JobQueue interface {
	EnqueueEnhanceImages(ctx context.Context, productID uuid.UUID) error
	EnqueueGenerateSuggestions(ctx context.Context, productID uuid.UUID) error
}

// InflightGuard rejects a second concurrent run of the same operation.
type InflightGuard interface {
	Acquire(ctx context.Context, operation, id string) (release func(), err error)
}
