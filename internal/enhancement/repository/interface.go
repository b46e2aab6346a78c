package repository

import (
	"context"
	"time"

	"marketplace_backend/internal/aipipeline"

	"github.com/google/uuid"
)

// Enhancement is the per-product AI document.
type Enhancement struct {
	ProductID             uuid.UUID                      `json:"productId"`
	EnhancedImages        []aipipeline.EnhancedImagePair `json:"enhancedImages"`
	SuggestionsBox        map[string][]string            `json:"suggestionsBox"`
	SuggestedTitles       []string                       `json:"suggestedTitles"`
	SuggestedDescriptions []string                       `json:"suggestedDescriptions"`
	SuggestedTags         []string                       `json:"suggestedTags"`
	SuggestedPrices       []float64                      `json:"suggestedPrices"`
	RawSuggestionsText    string                         `json:"rawSuggestionsText"`
	CreatedAt             time.Time                      `json:"createdAt"`
	UpdatedAt             time.Time                      `json:"updatedAt"`
}

// RawSuggestions is a stored provider answer awaiting re-normalization.
type RawSuggestions struct {
	ProductID uuid.UUID
	Raw       string
}

// MergeFunc computes the new enhancedImages from the stored ones.
type MergeFunc func(existing []aipipeline.EnhancedImagePair) []aipipeline.EnhancedImagePair

// Repository defines enhancement document persistence.
type Repository interface {
	// GetByProductID returns a NotFound apperr when no document exists.
	GetByProductID(ctx context.Context, productID uuid.UUID) (Enhancement, error)
	GetByProductIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]Enhancement, error)
	// UpdateEnhancedImages runs merge under a per-product lock and stores its result.
	UpdateEnhancedImages(ctx context.Context, productID uuid.UUID, merge MergeFunc) (Enhancement, error)
	SaveSuggestions(ctx context.Context, productID uuid.UUID, raw string, doc aipipeline.SuggestionDocument) (Enhancement, error)
	ListRawSuggestions(ctx context.Context, limit int) ([]RawSuggestions, error)
	UpdateSuggestionDocument(ctx context.Context, productID uuid.UUID, doc aipipeline.SuggestionDocument) error
}
