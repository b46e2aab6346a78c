package handler

import (
	"errors"
	"net/http"

	"marketplace_backend/internal/catalog/service"
	"marketplace_backend/internal/catalog/transport"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for catalog.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgRequiredFields   = "All required fields must be filled"
	msgInvalidID        = "invalid product id"
	maxMultipartMemory  = 32 << 20
)

// New creates a new catalog handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// CreateProduct stores a new listing with its images.
// POST /api/v1/products
func (h *Handler) CreateProduct(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	var req transport.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		if fields := validator.FieldErrors(err); fields != nil {
			for _, tag := range fields {
				if tag == "notblank" {
					httpkit.Error(c, http.StatusBadRequest, msgRequiredFields, fields)
					return
				}
			}
		}
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	images := uploadedImages(c)
	if len(images) > transport.MaxProductImages {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "at most 4 images are allowed")
		return
	}

	result, err := h.svc.CreateProduct(c.Request.Context(), req, images)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func uploadedImages(c *gin.Context) []transport.UploadedImage {
	form := c.Request.MultipartForm
	if form == nil || form.File == nil {
		return nil
	}
	headers := form.File["images"]
	out := make([]transport.UploadedImage, 0, len(headers))
	for _, fh := range headers {
		out = append(out, transport.UploadedImage{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			SizeBytes:   fh.Size,
			Open: func() (transport.ReadSeekCloser, error) {
				return fh.Open()
			},
		})
	}
	return out
}

// ListProducts lists listings newest first.
// GET /api/v1/products
func (h *Handler) ListProducts(c *gin.Context) {
	var req transport.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListProducts(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetProductByID retrieves one listing.
// GET /api/v1/products/:id
func (h *Handler) GetProductByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.GetProductByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
