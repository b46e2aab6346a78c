// Package storage provides S3-compatible object storage for product media.
// Listing uploads and AI-enhanced images both land here.
package storage

import (
	"context"
	"io"

	"marketplace_backend/platform/ai/provider"
)

// StoredObject describes an object written to the bucket.
type StoredObject struct {
	FileKey     string `json:"fileKey"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

// StorageService defines the object storage operations the modules rely on.
type StorageService interface {
	// UploadFile stores reader under folder and returns the object's public location.
	UploadFile(ctx context.Context, folder, fileName, contentType string, reader io.Reader, size int64) (*StoredObject, error)

	// UploadImage stores generated image bytes and returns the public URL.
	UploadImage(ctx context.Context, folder string, img provider.Image) (string, error)

	// DeleteObject removes an object from storage.
	DeleteObject(ctx context.Context, fileKey string) error

	// EnsureBucketExists creates the bucket with public-read access if it doesn't exist.
	EnsureBucketExists(ctx context.Context) error

	// ValidateContentType checks if the content type is allowed.
	ValidateContentType(contentType string) error

	// ValidateFileSize checks if the file size is within limits.
	ValidateFileSize(sizeBytes int64) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinIOPublicBaseURL() string
	GetMinioBucketProductImages() string
	IsMinIOEnabled() bool
}
