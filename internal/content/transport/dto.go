package transport

import (
	"marketplace_backend/internal/aipipeline"

	"github.com/google/uuid"
)

type GenerateCaptionsResponse struct {
	Success   bool                  `json:"success"`
	Message   string                `json:"message"`
	ProductID uuid.UUID             `json:"productId"`
	Captions  aipipeline.CaptionSet `json:"captions"`
}
