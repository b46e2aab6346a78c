// Package replicate adapts Replicate-hosted image models to provider.Generator.
// The model output URL is downloaded so callers always receive bytes.
package replicate

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marketplace_backend/platform/ai/provider"
	"marketplace_backend/platform/logger"

	repgo "github.com/replicate/replicate-go"
)

const maxOutputBytes = 20 << 20

// Config selects the model and how the input image is passed to it.
type Config struct {
	APIToken string
	// Model is "owner/name" or "owner/name:version".
	Model string
	// ImageInputKey is the model input field receiving the source image.
	ImageInputKey string
}

// Client implements provider.Generator for image models.
type Client struct {
	client   *repgo.Client
	model    string
	imageKey string
	http     *http.Client
	log      *logger.Logger
}

// New creates a Replicate client.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.APIToken == "" {
		return nil, errors.New("replicate api token is required")
	}
	client, err := repgo.NewClient(repgo.WithToken(cfg.APIToken))
	if err != nil {
		return nil, fmt.Errorf("create replicate client: %w", err)
	}
	imageKey := cfg.ImageInputKey
	if imageKey == "" {
		imageKey = "input_image"
	}
	return &Client{
		client:   client,
		model:    cfg.Model,
		imageKey: imageKey,
		http:     &http.Client{Timeout: 60 * time.Second},
		log:      log,
	}, nil
}

// Name implements provider.Generator.
func (c *Client) Name() string { return "replicate" }

// Generate implements provider.Generator.
func (c *Client) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	input := repgo.PredictionInput{
		"prompt":        req.Instruction,
		"output_format": "png",
	}
	if req.Image != nil && len(req.Image.Data) > 0 {
		input[c.imageKey] = "data:" + req.Image.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(req.Image.Data)
	} else {
		input["width"] = 1024
		input["height"] = 1024
	}

	start := time.Now()
	output, err := c.client.Run(ctx, c.model, input, nil)
	err = c.classify(err)
	if c.log != nil {
		c.log.ProviderCall(c.Name(), c.model, float64(time.Since(start).Milliseconds()), err)
	}
	if err != nil {
		return nil, err
	}

	outURL := firstURL(output)
	if outURL == "" {
		// Text-only output; let the pipeline apply its fallback.
		return &provider.Response{Text: fmt.Sprint(output)}, nil
	}

	img, err := c.download(ctx, outURL)
	if err != nil {
		return nil, provider.Classify(c.Name(), 0, err)
	}
	return &provider.Response{Images: []provider.Image{*img}}, nil
}

func firstURL(output any) string {
	switch v := output.(type) {
	case string:
		if strings.HasPrefix(v, "http") {
			return v
		}
	case []any:
		for _, item := range v {
			if u := firstURL(item); u != "" {
				return u
			}
		}
	case map[string]any:
		for _, key := range []string{"output", "url", "image"} {
			if u := firstURL(v[key]); u != "" {
				return u
			}
		}
	}
	return ""
}

func (c *Client) download(ctx context.Context, url string) (*provider.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download output: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download output: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxOutputBytes))
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" || !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(data)
	}
	return &provider.Image{MIMEType: mime, Data: data}, nil
}

func (c *Client) classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *repgo.APIError
	if errors.As(err, &apiErr) {
		return provider.Classify(c.Name(), apiErr.Status, err)
	}
	return provider.Classify(c.Name(), 0, err)
}

var _ provider.Generator = (*Client)(nil)
