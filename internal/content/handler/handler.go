package handler

import (
	"net/http"

	"marketplace_backend/internal/content/service"
	"marketplace_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidID = "invalid product id"

// Handler handles HTTP requests for AI captions.
type Handler struct {
	svc *service.Service
}

// New creates a new content handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// GenerateCaptions generates social captions for a product.
// POST /api/v1/ai-content/generate/:productId
func (h *Handler) GenerateCaptions(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	result, err := h.svc.GenerateCaptions(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByProductID returns stored captions for a product.
// GET /api/v1/ai-content/product/:productId
func (h *Handler) GetByProductID(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByProductID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func parseProductID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}
