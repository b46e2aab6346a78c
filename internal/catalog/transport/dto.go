package transport

import (
	"time"

	"github.com/google/uuid"
)

// MaxProductImages caps the number of photos per listing.
const MaxProductImages = 4

// CreateProductRequest is the multipart form of a new listing. Images are
// read from the "images" file field separately.
type CreateProductRequest struct {
	Name        string `form:"name" validate:"notblank,max=200"`
	Description string `form:"description" validate:"max=2000"`
	Price       string `form:"price" validate:"notblank,max=32"`
	Category    string `form:"category" validate:"notblank,max=100"`
}

// UploadedImage is an image file taken from the request.
type UploadedImage struct {
	FileName    string
	ContentType string
	SizeBytes   int64
	Open        func() (ReadSeekCloser, error)
}

// ReadSeekCloser is what multipart.File provides.
type ReadSeekCloser interface {
	Read(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Close() error
}

type ListProductsRequest struct {
	Category string `form:"category" validate:"max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type ProductImageResponse struct {
	Position int    `json:"position"`
	URL      string `json:"url"`
}

type ProductResponse struct {
	ID          uuid.UUID              `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Price       float64                `json:"price"`
	PriceCents  int64                  `json:"priceCents"`
	Category    string                 `json:"category"`
	Images      []string               `json:"images"`
	ImageFiles  []ProductImageResponse `json:"imageFiles"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

type ProductListResponse struct {
	Items      []ProductResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}
