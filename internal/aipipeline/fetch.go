package aipipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marketplace_backend/platform/ai/provider"
)

const maxSourceImageBytes = 15 << 20

// ImageFetcher loads the bytes of a source image.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (*provider.Image, error)
}

// HTTPImageFetcher downloads images over HTTP(S).
type HTTPImageFetcher struct {
	client *http.Client
}

// NewHTTPImageFetcher creates a fetcher with a bounded per-request timeout.
func NewHTTPImageFetcher(timeout time.Duration) *HTTPImageFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPImageFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch implements ImageFetcher.
func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) (*provider.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("fetch image: empty body")
	}
	if len(data) > maxSourceImageBytes {
		return nil, fmt.Errorf("fetch image: larger than %d bytes", maxSourceImageBytes)
	}

	mime := strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0])
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("fetch image: unsupported content type %q", mime)
	}
	return &provider.Image{MIMEType: mime, Data: data}, nil
}
