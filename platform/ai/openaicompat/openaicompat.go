// Package openaicompat adapts OpenAI-compatible chat completion APIs
// (Groq, Moonshot) to provider.Generator via go-openai.
package openaicompat

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace_backend/platform/ai/provider"
	"marketplace_backend/platform/logger"

	openai "github.com/sashabaranov/go-openai"
)

// Config identifies one OpenAI-compatible endpoint.
type Config struct {
	// Name is reported by Generator.Name, e.g. "groq".
	Name    string
	APIKey  string
	BaseURL string
	Model   string
}

// Client implements provider.Generator for text generation.
type Client struct {
	name   string
	model  string
	client *openai.Client
	log    *logger.Logger
}

// New builds a chat client against cfg.BaseURL.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: api key is required", cfg.Name)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%s: model is required", cfg.Name)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &Client{
		name:   cfg.Name,
		model:  cfg.Model,
		client: openai.NewClientWithConfig(clientConfig),
		log:    log,
	}, nil
}

// Name implements provider.Generator.
func (c *Client) Name() string { return c.name }

// Generate implements provider.Generator. Chat endpoints never return
// images, so WantImage requests come back as text only.
func (c *Client) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, userMessage(req))

	chatReq := openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		chatReq.Temperature = *req.Temperature
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	err = c.classify(err)
	if c.log != nil {
		c.log.ProviderCall(c.name, c.model, float64(time.Since(start).Milliseconds()), err)
	}
	if err != nil {
		return nil, err
	}

	return toResponse(resp), nil
}

func toResponse(resp openai.ChatCompletionResponse) *provider.Response {
	if len(resp.Choices) == 0 {
		return &provider.Response{}
	}
	return &provider.Response{Text: resp.Choices[0].Message.Content}
}

func userMessage(req provider.Request) openai.ChatCompletionMessage {
	if req.Image == nil || len(req.Image.Data) == 0 {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Instruction}
	}

	dataURI := "data:" + req.Image.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(req.Image.Data)
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.Instruction},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURI}},
		},
	}
}

func (c *Client) classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return provider.Classify(c.name, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return provider.Classify(c.name, reqErr.HTTPStatusCode, err)
	}
	return provider.Classify(c.name, 0, err)
}

var _ provider.Generator = (*Client)(nil)
