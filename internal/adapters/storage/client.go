package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"marketplace_backend/internal/aipipeline"
	"marketplace_backend/platform/ai/provider"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const publicReadPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"AWS": ["*"]},
    "Action": ["s3:GetObject"],
    "Resource": ["arn:aws:s3:::%s/*"]
  }]
}`

// MinIOService implements StorageService using MinIO.
type MinIOService struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	maxFileSize   int64
}

// NewMinIOService creates a new MinIO storage service.
func NewMinIOService(cfg Config) (*MinIOService, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOService{
		client:        client,
		bucket:        cfg.GetMinioBucketProductImages(),
		publicBaseURL: publicBase(cfg),
		maxFileSize:   cfg.GetMinIOMaxFileSize(),
	}, nil
}

func publicBase(cfg Config) string {
	if base := strings.TrimRight(cfg.GetMinIOPublicBaseURL(), "/"); base != "" {
		return base + "/" + cfg.GetMinioBucketProductImages()
	}
	scheme := "http"
	if cfg.GetMinIOUseSSL() {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.GetMinIOEndpoint(), cfg.GetMinioBucketProductImages())
}

// EnsureBucketExists creates the bucket if it doesn't exist and makes its
// objects publicly readable, since listings link to them directly.
func (s *MinIOService) EnsureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}

	if err := s.client.SetBucketPolicy(ctx, s.bucket, fmt.Sprintf(publicReadPolicy, s.bucket)); err != nil {
		return fmt.Errorf("failed to set bucket policy on %s: %w", s.bucket, err)
	}
	return nil
}

// UploadFile uploads a file directly to storage from an io.Reader.
func (s *MinIOService) UploadFile(ctx context.Context, folder, fileName, contentType string, reader io.Reader, size int64) (*StoredObject, error) {
	ext := path.Ext(fileName)
	baseName := strings.TrimSuffix(path.Base(fileName), ext)
	if baseName == "" || baseName == "." || baseName == "/" {
		baseName = "image"
	}
	fileKey := path.Join(folder, fmt.Sprintf("%s_%s%s", baseName, uuid.New().String()[:8], ext))

	info, err := s.client.PutObject(ctx, s.bucket, fileKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file %s: %w", fileKey, err)
	}

	return &StoredObject{
		FileKey:     fileKey,
		URL:         s.PublicURL(fileKey),
		ContentType: contentType,
		SizeBytes:   info.Size,
	}, nil
}

// UploadImage stores generated image bytes under folder.
func (s *MinIOService) UploadImage(ctx context.Context, folder string, img provider.Image) (string, error) {
	if len(img.Data) == 0 {
		return "", fmt.Errorf("refusing to upload empty image")
	}
	name := "enhanced" + aipipeline.ExtensionFor(img.MIMEType)
	obj, err := s.UploadFile(ctx, folder, name, img.MIMEType, bytes.NewReader(img.Data), int64(len(img.Data)))
	if err != nil {
		return "", err
	}
	return obj.URL, nil
}

// DeleteObject removes an object from storage.
func (s *MinIOService) DeleteObject(ctx context.Context, fileKey string) error {
	err := s.client.RemoveObject(ctx, s.bucket, fileKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", fileKey, err)
	}
	return nil
}

// PublicURL returns the unauthenticated URL of an object key.
func (s *MinIOService) PublicURL(fileKey string) string {
	return s.publicBaseURL + "/" + strings.TrimLeft(fileKey, "/")
}
