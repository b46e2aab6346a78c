package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product represents a seller listing.
type Product struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	PriceCents  int64     `db:"price_cents"`
	Category    string    `db:"category"`
	Images      []Image
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Image is one stored listing photo. Position preserves upload order.
type Image struct {
	Position    int    `db:"position"`
	URL         string `db:"url"`
	FileKey     string `db:"file_key"`
	ContentType string `db:"content_type"`
	SizeBytes   int64  `db:"size_bytes"`
}

// ImageURLs returns image URLs in position order.
func (p Product) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.URL)
	}
	return urls
}

// CreateProductParams contains data for creating a product.
type CreateProductParams struct {
	Name        string
	Description *string
	PriceCents  int64
	Category    string
	Images      []Image
}

// ListProductsParams defines pagination for listing products.
type ListProductsParams struct {
	Category string
	Offset   int
	Limit    int
}

// Repository defines catalog persistence.
type Repository interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]Product, int, error)
}
