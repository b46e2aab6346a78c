package handler

import (
	"net/http"

	"marketplace_backend/internal/enhancement/service"
	"marketplace_backend/internal/enhancement/transport"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for AI enhancement.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid product id"
)

// New creates a new enhancement handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// EnhanceImages enhances every image of a product.
// POST /api/v1/ai/enhance-image/:id
func (h *Handler) EnhanceImages(c *gin.Context) {
	id, async, ok := h.parseGenerateRequest(c)
	if !ok {
		return
	}

	if async {
		result, err := h.svc.QueueEnhanceImages(c.Request.Context(), id)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.Accepted(c, result)
		return
	}

	result, err := h.svc.EnhanceImages(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GenerateSuggestions generates marketing suggestions for a product.
// POST /api/v1/ai/generate-suggestions/:id
func (h *Handler) GenerateSuggestions(c *gin.Context) {
	id, async, ok := h.parseGenerateRequest(c)
	if !ok {
		return
	}

	if async {
		result, err := h.svc.QueueGenerateSuggestions(c.Request.Context(), id)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.Accepted(c, result)
		return
	}

	result, err := h.svc.GenerateSuggestions(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetProductWithEnhancement returns a product with its AI document or null.
// GET /api/v1/ai/product/:id
func (h *Handler) GetProductWithEnhancement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.GetProductWithEnhancement(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListProductsWithEnhancement pages products with their AI documents.
// GET /api/v1/ai/products
func (h *Handler) ListProductsWithEnhancement(c *gin.Context) {
	var req transport.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListProductsWithEnhancement(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) parseGenerateRequest(c *gin.Context) (uuid.UUID, bool, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false, false
	}
	var q transport.AsyncQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false, false
	}
	return id, q.Async, true
}
