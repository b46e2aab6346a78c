package aipipeline

import (
	"context"
	"path"
	"time"

	"marketplace_backend/platform/ai/provider"
	"marketplace_backend/platform/ai/retry"
	"marketplace_backend/platform/logger"

	"golang.org/x/time/rate"
)

// EnhancedFolder is the storage folder that receives provider-edited images.
const EnhancedFolder = "gemini-enhanced"

// EnhancedImagePair records one image's before/after state. Enhanced is nil
// when neither the provider nor the fallback produced a usable result.
type EnhancedImagePair struct {
	Original string  `json:"original"`
	Enhanced *string `json:"enhanced"`
}

// EnhancementFailure reports an image skipped because of an error.
type EnhancementFailure struct {
	Original string `json:"original"`
	Error    string `json:"error"`
}

// BatchResult is the outcome of enhancing all images of one product.
type BatchResult struct {
	Pairs    []EnhancedImagePair  `json:"enhancedImages"`
	Failures []EnhancementFailure `json:"failures"`
}

// ImageUploader stores enhanced bytes and returns their public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, folder string, img provider.Image) (string, error)
}

// Pacing spaces per-image provider calls.
type Pacing struct {
	// Interval is the minimum gap between successive provider calls.
	Interval time.Duration
	// RateLimitCooldown is the extra wait after a rate-limit failure.
	RateLimitCooldown time.Duration
}

// EnhancerDeps bundles the collaborators of an ImageEnhancer.
type EnhancerDeps struct {
	Generator provider.Generator
	Prompts   *Prompts
	Retry     retry.Policy
	Fetcher   ImageFetcher
	Uploader  ImageUploader
	Transform *TransformURLBuilder
	Pacing    Pacing
	Log       *logger.Logger
	// Sleep overrides the cooldown wait, mainly for tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// ImageEnhancer builds enhancement pairs one image at a time.
type ImageEnhancer struct {
	deps EnhancerDeps
}

// NewImageEnhancer creates an ImageEnhancer.
func NewImageEnhancer(deps EnhancerDeps) *ImageEnhancer {
	if deps.Sleep == nil {
		deps.Sleep = sleepContext
	}
	if deps.Log == nil {
		deps.Log = logger.New("production")
	}
	return &ImageEnhancer{deps: deps}
}

// EnhanceAll processes urls sequentially. A failing image is recorded and
// skipped; only context cancellation aborts the batch.
func (e *ImageEnhancer) EnhanceAll(ctx context.Context, product ProductContext, urls []string) (BatchResult, error) {
	result := BatchResult{
		Pairs:    make([]EnhancedImagePair, 0, len(urls)),
		Failures: []EnhancementFailure{},
	}

	limit := rate.Inf
	if e.deps.Pacing.Interval > 0 {
		limit = rate.Every(e.deps.Pacing.Interval)
	}
	pacer := rate.NewLimiter(limit, 1)
	log := e.deps.Log.WithProductID(product.ID)

	for _, source := range urls {
		if err := pacer.Wait(ctx); err != nil {
			return result, err
		}

		pair, err := e.enhanceOne(ctx, product, source)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			log.Warn("image enhancement failed", "original", source, "error", err)
			result.Failures = append(result.Failures, EnhancementFailure{Original: source, Error: err.Error()})

			if provider.IsRateLimit(err) && e.deps.Pacing.RateLimitCooldown > 0 {
				log.Info("provider rate limited, cooling down", "cooldown", e.deps.Pacing.RateLimitCooldown.String())
				if err := e.deps.Sleep(ctx, e.deps.Pacing.RateLimitCooldown); err != nil {
					return result, err
				}
			}
			continue
		}
		result.Pairs = append(result.Pairs, pair)
	}

	log.Info("image enhancement batch finished", "images", len(urls), "pairs", len(result.Pairs), "failures", len(result.Failures))
	return result, nil
}

func (e *ImageEnhancer) enhanceOne(ctx context.Context, product ProductContext, source string) (EnhancedImagePair, error) {
	src, err := e.deps.Fetcher.Fetch(ctx, source)
	if err != nil {
		return EnhancedImagePair{}, err
	}

	req, err := e.deps.Prompts.EnhanceImage(product, *src)
	if err != nil {
		return EnhancedImagePair{}, err
	}

	resp, err := retry.Do(ctx, e.deps.Retry, e.deps.Log, "enhance-image", func(ctx context.Context) (*provider.Response, error) {
		return e.deps.Generator.Generate(ctx, req)
	})
	if err != nil {
		return EnhancedImagePair{}, err
	}

	pair := EnhancedImagePair{Original: source}
	if resp == nil {
		resp = &provider.Response{}
	}

	img := resp.FirstImage()
	if img == nil {
		img = DecodeBase64Image(resp.Text)
	}
	if img != nil {
		url, err := e.deps.Uploader.UploadImage(ctx, path.Join(EnhancedFolder, product.ID), *img)
		if err == nil {
			pair.Enhanced = &url
			return pair, nil
		}
		if ctx.Err() != nil {
			return EnhancedImagePair{}, ctx.Err()
		}
		e.deps.Log.WithProductID(product.ID).Warn("enhanced image upload failed, using fallback", "original", source, "error", err)
	}

	if fallback, ok := e.deps.Transform.Build(source); ok {
		pair.Enhanced = &fallback
	}
	return pair, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
