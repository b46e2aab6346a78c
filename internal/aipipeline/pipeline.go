package aipipeline

import (
	"context"
	"time"

	"marketplace_backend/platform/ai"
	"marketplace_backend/platform/ai/provider"
	"marketplace_backend/platform/ai/retry"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
)

const sourceFetchTimeout = 30 * time.Second

// Config is everything Build reads.
type Config interface {
	ai.ProvidersConfig
	config.PipelineConfig
	config.ImageTransformConfig
}

// Pipeline is the assembled set of AI stages shared by the API and the worker.
type Pipeline struct {
	Enhancer  *ImageEnhancer
	Suggester *TextGenerator
	Captioner *TextGenerator
	Fetcher   ImageFetcher
}

// Build resolves the configured providers and assembles the stages. A stage
// whose provider has no credentials still builds; its calls fail per item.
func Build(ctx context.Context, cfg Config, uploader ImageUploader, log *logger.Logger) (*Pipeline, error) {
	registry, err := ai.Build(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	prompts, err := LoadPrompts()
	if err != nil {
		return nil, err
	}

	policy := retry.Policy{
		MaxAttempts: cfg.GetAIMaxAttempts(),
		BaseDelay:   cfg.GetAIRetryBaseDelay(),
		Backoff:     retry.Backoff(cfg.GetAIRetryBackoff()),
	}
	fetcher := NewHTTPImageFetcher(sourceFetchTimeout)

	resolve := func(stage, name string) provider.Generator {
		g, err := registry.Get(name)
		if err != nil {
			log.Warn("ai provider unavailable", "stage", stage, "provider", name, "error", err)
			return provider.Missing{Backend: name}
		}
		return g
	}

	return &Pipeline{
		Enhancer: NewImageEnhancer(EnhancerDeps{
			Generator: resolve("enhance-image", cfg.GetAIImageProvider()),
			Prompts:   prompts,
			Retry:     policy,
			Fetcher:   fetcher,
			Uploader:  uploader,
			Transform: NewTransformURLBuilder(cfg.GetCloudinaryCloudName(), cfg.GetCloudinaryTransform()),
			Pacing: Pacing{
				Interval:          cfg.GetAIImageInterval(),
				RateLimitCooldown: cfg.GetAIRateLimitCooldown(),
			},
			Log: log,
		}),
		Suggester: NewTextGenerator(resolve("suggestions", cfg.GetAISuggestionsProvider()), prompts, policy, log),
		Captioner: NewTextGenerator(resolve("captions", cfg.GetAICaptionsProvider()), prompts, policy, log),
		Fetcher:   fetcher,
	}, nil
}
