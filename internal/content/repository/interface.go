package repository

import (
	"context"
	"time"

	"marketplace_backend/internal/aipipeline"

	"github.com/google/uuid"
)

// Content is the stored caption document of a product.
type Content struct {
	ProductID   uuid.UUID             `json:"productId"`
	Captions    aipipeline.CaptionSet `json:"captions"`
	RawResponse string                `json:"rawResponse"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// Repository defines caption persistence.
type Repository interface {
	GetByProductID(ctx context.Context, productID uuid.UUID) (Content, error)
	Upsert(ctx context.Context, productID uuid.UUID, captions aipipeline.CaptionSet, raw string) (Content, error)
}
