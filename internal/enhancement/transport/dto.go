package transport

import (
	"marketplace_backend/internal/aipipeline"
	"marketplace_backend/internal/enhancement/ports"
	"marketplace_backend/internal/enhancement/repository"

	"github.com/google/uuid"
)

type EnhanceImagesResponse struct {
	ProductID      uuid.UUID                       `json:"productId"`
	EnhancedImages []aipipeline.EnhancedImagePair  `json:"enhancedImages"`
	Failures       []aipipeline.EnhancementFailure `json:"failures"`
}

type SuggestionsResponse struct {
	ProductID             uuid.UUID           `json:"productId"`
	SuggestionsBox        map[string][]string `json:"suggestionsBox"`
	SuggestedTitles       []string            `json:"suggestedTitles"`
	SuggestedDescriptions []string            `json:"suggestedDescriptions"`
	SuggestedTags         []string            `json:"suggestedTags"`
	SuggestedPrices       []float64           `json:"suggestedPrices"`
	RawSuggestionsText    string              `json:"rawSuggestionsText"`
}

type QueuedResponse struct {
	ProductID uuid.UUID `json:"productId"`
	Queued    bool      `json:"queued"`
}

type ProductEnhancementResponse struct {
	Product       ports.Product           `json:"product"`
	AIEnhancement *repository.Enhancement `json:"aiEnhancement"`
}

type ListRequest struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type ProductEnhancementListResponse struct {
	Items      []ProductEnhancementResponse `json:"items"`
	Total      int                          `json:"total"`
	Page       int                          `json:"page"`
	PageSize   int                          `json:"pageSize"`
	TotalPages int                          `json:"totalPages"`
}

type AsyncQuery struct {
	Async bool `form:"async"`
}
