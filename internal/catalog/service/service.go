package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"marketplace_backend/internal/adapters/storage"
	"marketplace_backend/internal/catalog/repository"
	"marketplace_backend/internal/catalog/transport"
	"marketplace_backend/internal/events"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/sanitize"

	"github.com/google/uuid"
)

const msgRequiredFields = "All required fields must be filled"

// Service provides business logic for catalog.
type Service struct {
	repo    repository.Repository
	storage storage.StorageService
	bus     events.Bus
	log     *logger.Logger
}

// New creates a new catalog service.
func New(repo repository.Repository, storageSvc storage.StorageService, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, storage: storageSvc, bus: bus, log: log}
}

// CreateProduct stores the listing images, then the listing itself, and
// announces it so the AI stages can pick it up.
func (s *Service) CreateProduct(ctx context.Context, req transport.CreateProductRequest, images []transport.UploadedImage) (transport.ProductResponse, error) {
	name := sanitize.Text(req.Name)
	category := sanitize.Text(req.Category)
	if name == "" || category == "" || strings.TrimSpace(req.Price) == "" {
		return transport.ProductResponse{}, apperr.Validation(msgRequiredFields)
	}
	priceCents, err := ParseRupees(req.Price)
	if err != nil {
		return transport.ProductResponse{}, apperr.Validation("price must be a non-negative amount").WithDetails(err.Error())
	}
	if len(images) > transport.MaxProductImages {
		return transport.ProductResponse{}, apperr.Validation(fmt.Sprintf("at most %d images are allowed", transport.MaxProductImages))
	}
	for _, img := range images {
		if err := s.storage.ValidateContentType(img.ContentType); err != nil {
			return transport.ProductResponse{}, apperr.Validation(err.Error())
		}
		if err := s.storage.ValidateFileSize(img.SizeBytes); err != nil {
			return transport.ProductResponse{}, apperr.Validation(err.Error())
		}
	}

	folder := "products/" + uuid.NewString()
	stored := make([]repository.Image, 0, len(images))
	for _, img := range images {
		obj, err := s.upload(ctx, folder, img)
		if err != nil {
			s.cleanup(ctx, stored)
			return transport.ProductResponse{}, err
		}
		stored = append(stored, repository.Image{
			URL:         obj.URL,
			FileKey:     obj.FileKey,
			ContentType: obj.ContentType,
			SizeBytes:   obj.SizeBytes,
		})
	}

	var description *string
	if d := sanitize.Text(req.Description); d != "" {
		description = &d
	}

	product, err := s.repo.CreateProduct(ctx, repository.CreateProductParams{
		Name:        name,
		Description: description,
		PriceCents:  priceCents,
		Category:    category,
		Images:      stored,
	})
	if err != nil {
		s.cleanup(ctx, stored)
		return transport.ProductResponse{}, err
	}

	s.log.Info("product created", "id", product.ID, "images", len(product.Images))
	if s.bus != nil {
		s.bus.Publish(ctx, events.ProductCreated{
			BaseEvent:  events.NewBaseEvent(),
			ProductID:  product.ID,
			ImageCount: len(product.Images),
		})
	}
	return ToProductResponse(product), nil
}

func (s *Service) upload(ctx context.Context, folder string, img transport.UploadedImage) (*storage.StoredObject, error) {
	file, err := img.Open()
	if err != nil {
		return nil, apperr.BadRequest("could not read uploaded image")
	}
	defer file.Close()

	obj, err := s.storage.UploadFile(ctx, folder, img.FileName, img.ContentType, file, img.SizeBytes)
	if err != nil {
		return nil, fmt.Errorf("store product image: %w", err)
	}
	return obj, nil
}

func (s *Service) cleanup(ctx context.Context, stored []repository.Image) {
	for _, img := range stored {
		if err := s.storage.DeleteObject(context.WithoutCancel(ctx), img.FileKey); err != nil {
			s.log.Warn("failed to remove orphaned image", "fileKey", img.FileKey, "error", err)
		}
	}
}

// GetProductByID retrieves a product by ID.
func (s *Service) GetProductByID(ctx context.Context, id uuid.UUID) (transport.ProductResponse, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return transport.ProductResponse{}, err
	}
	return ToProductResponse(product), nil
}

// ListProducts retrieves products newest first with pagination.
func (s *Service) ListProducts(ctx context.Context, req transport.ListProductsRequest) (transport.ProductListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := s.repo.ListProducts(ctx, repository.ListProductsParams{
		Category: strings.TrimSpace(req.Category),
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	})
	if err != nil {
		return transport.ProductListResponse{}, err
	}

	resp := transport.ProductListResponse{
		Items:    make([]transport.ProductResponse, 0, len(items)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, p := range items {
		resp.Items = append(resp.Items, ToProductResponse(p))
	}
	resp.TotalPages = (total + pageSize - 1) / pageSize
	return resp, nil
}

// maxPriceRupees keeps paise well inside int64 and float64 precision.
const maxPriceRupees = 1e10

// ParseRupees converts a rupee amount such as "1,299.50" or "₹499" to paise.
func ParseRupees(value string) (int64, error) {
	cleaned := strings.NewReplacer("₹", "", ",", "", " ", "").Replace(strings.TrimSpace(value))
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", value)
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid price %q", value)
	}
	if f > maxPriceRupees {
		return 0, fmt.Errorf("price %q exceeds %.0f", value, maxPriceRupees)
	}
	return int64(math.Round(f * 100)), nil
}

// ToProductResponse maps a stored product to its API shape.
func ToProductResponse(p repository.Product) transport.ProductResponse {
	resp := transport.ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		Price:      float64(p.PriceCents) / 100,
		PriceCents: p.PriceCents,
		Category:   p.Category,
		Images:     p.ImageURLs(),
		ImageFiles: make([]transport.ProductImageResponse, 0, len(p.Images)),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.Description != nil {
		resp.Description = *p.Description
	}
	for _, img := range p.Images {
		resp.ImageFiles = append(resp.ImageFiles, transport.ProductImageResponse{Position: img.Position, URL: img.URL})
	}
	return resp
}
