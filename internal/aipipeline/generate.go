package aipipeline

import (
	"context"
	"errors"
	"time"

	"marketplace_backend/platform/ai/llmjson"
	"marketplace_backend/platform/ai/provider"
	"marketplace_backend/platform/ai/retry"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
)

// TextGenerator runs the text-producing stages: suggestions and captions.
type TextGenerator struct {
	gen     provider.Generator
	prompts *Prompts
	policy  retry.Policy
	log     *logger.Logger
}

// NewTextGenerator creates a TextGenerator bound to one backend.
func NewTextGenerator(gen provider.Generator, prompts *Prompts, policy retry.Policy, log *logger.Logger) *TextGenerator {
	return &TextGenerator{gen: gen, prompts: prompts, policy: policy, log: log}
}

// SuggestionResult carries the provider's raw text next to the mapped document.
type SuggestionResult struct {
	Raw      string
	Document SuggestionDocument
}

// CaptionResult carries the provider's raw text next to the normalized captions.
type CaptionResult struct {
	Raw      string
	Captions CaptionSet
}

// Suggestions asks the provider for marketing suggestions. Parsing never
// fails: malformed output yields a document with every category empty.
func (g *TextGenerator) Suggestions(ctx context.Context, product ProductContext, image *provider.Image) (SuggestionResult, error) {
	req, err := g.prompts.Suggestions(product, image)
	if err != nil {
		return SuggestionResult{}, err
	}
	text, err := g.call(ctx, "generate-suggestions", req)
	if err != nil {
		return SuggestionResult{}, err
	}
	doc := MapSuggestions(llmjson.Repair(g.log, text))
	return SuggestionResult{Raw: text, Document: doc}, nil
}

// Captions asks the provider for per-platform social captions.
func (g *TextGenerator) Captions(ctx context.Context, product ProductContext) (CaptionResult, error) {
	req, err := g.prompts.Captions(product)
	if err != nil {
		return CaptionResult{}, err
	}
	text, err := g.call(ctx, "generate-captions", req)
	if err != nil {
		return CaptionResult{}, err
	}
	return CaptionResult{Raw: text, Captions: NormalizeCaptions(llmjson.Repair(g.log, text))}, nil
}

func (g *TextGenerator) call(ctx context.Context, op string, req provider.Request) (string, error) {
	start := time.Now()
	resp, err := retry.Do(ctx, g.policy, g.log, op, func(ctx context.Context) (*provider.Response, error) {
		return g.gen.Generate(ctx, req)
	})
	if g.log != nil {
		g.log.ProviderCall(g.gen.Name(), op, float64(time.Since(start).Milliseconds()), err)
	}
	if err != nil {
		return "", ProviderFailure(op, err)
	}
	return resp.Text, nil
}

// ProviderFailure converts a provider error into the domain error surfaced
// to callers: 503 for an exhausted retry budget, 502 otherwise.
func ProviderFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, retry.ErrExhausted) {
		return apperr.Wrap(apperr.KindUnavailable, "AI provider is busy, try again later", err).WithOp(op).WithDetails(err.Error())
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Wrap(apperr.KindUpstream, "AI provider request failed", err).WithOp(op).WithDetails(err.Error())
}
