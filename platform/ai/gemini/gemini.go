// Package gemini adapts google.golang.org/genai to provider.Generator.
// It serves both the Gemini API and Vertex AI backends.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace_backend/platform/ai/provider"
	"marketplace_backend/platform/logger"

	"google.golang.org/genai"
)

// Config selects backend and models.
type Config struct {
	APIKey     string
	Backend    string // "gemini" or "vertex"
	Project    string
	Location   string
	ImageModel string
	TextModel  string
}

// Client implements provider.Generator.
type Client struct {
	client     *genai.Client
	imageModel string
	textModel  string
	log        *logger.Logger
}

// New builds a genai client. The caller owns the returned Client.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	cc := &genai.ClientConfig{}
	if strings.EqualFold(cfg.Backend, "vertex") {
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	} else {
		if cfg.APIKey == "" {
			return nil, errors.New("gemini api key is required")
		}
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		client:     client,
		imageModel: cfg.ImageModel,
		textModel:  cfg.TextModel,
		log:        log,
	}, nil
}

// Name implements provider.Generator.
func (c *Client) Name() string { return "gemini" }

// Generate implements provider.Generator.
func (c *Client) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	model := c.textModel
	config := &genai.GenerateContentConfig{}
	if req.WantImage {
		model = c.imageModel
		config.ResponseModalities = []string{"TEXT", "IMAGE"}
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.Temperature != nil {
		config.Temperature = req.Temperature
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	parts := []*genai.Part{{Text: req.Instruction}}
	if req.Image != nil && len(req.Image.Data) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data},
		})
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	err = classify(err)
	if c.log != nil {
		c.log.ProviderCall(c.Name(), model, float64(time.Since(start).Milliseconds()), err)
	}
	if err != nil {
		return nil, err
	}

	return toResponse(resp), nil
}

// toResponse treats a blocked or empty candidate list as an empty result.
func toResponse(resp *genai.GenerateContentResponse) *provider.Response {
	out := &provider.Response{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return out
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			out.Images = append(out.Images, provider.Image{
				MIMEType: part.InlineData.MIMEType,
				Data:     part.InlineData.Data,
			})
			continue
		}
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	out.Text = text.String()
	return out
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return provider.Classify("gemini", apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return provider.Classify("gemini", apiErrPtr.Code, err)
	}
	return provider.Classify("gemini", 0, err)
}

var _ provider.Generator = (*Client)(nil)
