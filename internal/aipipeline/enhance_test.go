package aipipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"marketplace_backend/platform/ai/provider"
	"marketplace_backend/platform/ai/retry"
	"marketplace_backend/platform/logger"
)

type fakeFetcher struct {
	failFor map[string]error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*provider.Image, error) {
	if err := f.failFor[url]; err != nil {
		return nil, err
	}
	return &provider.Image{MIMEType: "image/jpeg", Data: []byte(url)}, nil
}

// scriptedGenerator answers per source image, keyed by the fetched bytes.
type scriptedGenerator struct {
	responses map[string]*provider.Response
	errors    map[string]error
	calls     []string
}

func (g *scriptedGenerator) Name() string { return "scripted" }

func (g *scriptedGenerator) Generate(_ context.Context, req provider.Request) (*provider.Response, error) {
	key := ""
	if req.Image != nil {
		key = string(req.Image.Data)
	}
	g.calls = append(g.calls, key)
	if err := g.errors[key]; err != nil {
		return nil, err
	}
	if resp, ok := g.responses[key]; ok {
		return resp, nil
	}
	return &provider.Response{Images: []provider.Image{{MIMEType: "image/png", Data: pngBytes()}}}, nil
}

type fakeUploader struct {
	folders []string
	fail    bool
}

func (u *fakeUploader) UploadImage(_ context.Context, folder string, _ provider.Image) (string, error) {
	if u.fail {
		return "", errors.New("bucket unavailable")
	}
	u.folders = append(u.folders, folder)
	return fmt.Sprintf("https://cdn.example.com/%s/%d.png", folder, len(u.folders)), nil
}

type sleepLog struct {
	waits []time.Duration
}

func (s *sleepLog) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

func newTestEnhancer(t *testing.T, gen provider.Generator, fetcher ImageFetcher, up ImageUploader, transform *TransformURLBuilder, sleeps *sleepLog) *ImageEnhancer {
	t.Helper()
	return NewImageEnhancer(EnhancerDeps{
		Generator: gen,
		Prompts:   testPrompts(t),
		Retry:     retry.Policy{MaxAttempts: 1},
		Fetcher:   fetcher,
		Uploader:  up,
		Transform: transform,
		Pacing:    Pacing{RateLimitCooldown: 5 * time.Second},
		Log:       logger.New("test"),
		Sleep:     sleeps.sleep,
	})
}

func TestEnhanceAllContinuesAfterRateLimit(t *testing.T) {
	urls := []string{"https://img/1.jpg", "https://img/2.jpg", "https://img/3.jpg"}
	gen := &scriptedGenerator{errors: map[string]error{
		urls[1]: provider.Classify("gemini", 429, errors.New("quota exceeded")),
	}}
	up := &fakeUploader{}
	sleeps := &sleepLog{}
	enhancer := newTestEnhancer(t, gen, &fakeFetcher{}, up, nil, sleeps)

	result, err := enhancer.EnhanceAll(context.Background(), ProductContext{ID: "p1"}, urls)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(result.Pairs))
	}
	if result.Pairs[0].Original != urls[0] || result.Pairs[1].Original != urls[2] {
		t.Fatalf("unexpected pair order %+v", result.Pairs)
	}
	for _, pair := range result.Pairs {
		if pair.Enhanced == nil {
			t.Fatalf("expected enhanced URL for %s", pair.Original)
		}
	}
	if len(result.Failures) != 1 || result.Failures[0].Original != urls[1] {
		t.Fatalf("expected one failure for image 2, got %+v", result.Failures)
	}
	if len(gen.calls) != 3 {
		t.Fatalf("expected image 3 to be attempted, calls=%v", gen.calls)
	}
	if len(sleeps.waits) != 1 || sleeps.waits[0] != 5*time.Second {
		t.Fatalf("expected one cooldown, got %v", sleeps.waits)
	}
	if up.folders[0] != "gemini-enhanced/p1" {
		t.Fatalf("unexpected upload folder %s", up.folders[0])
	}
}

func TestEnhanceAllFallsBackToTransformURL(t *testing.T) {
	src := "https://img/1.jpg"
	gen := &scriptedGenerator{responses: map[string]*provider.Response{
		src: {Text: "I can't modify this image."},
	}}
	transform := NewTransformURLBuilder("demo", "")
	enhancer := newTestEnhancer(t, gen, &fakeFetcher{}, &fakeUploader{}, transform, &sleepLog{})

	result, err := enhancer.EnhanceAll(context.Background(), ProductContext{ID: "p1"}, []string{src})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := transform.Build(src)
	if len(result.Pairs) != 1 || result.Pairs[0].Enhanced == nil || *result.Pairs[0].Enhanced != want {
		t.Fatalf("expected fallback %s, got %+v", want, result.Pairs)
	}
}

func TestEnhanceAllEmptyResponseUsesTransformURL(t *testing.T) {
	src := "https://img.example.com/a.jpg"
	gen := &scriptedGenerator{responses: map[string]*provider.Response{src: {}}}
	transform := NewTransformURLBuilder("demo", "")
	enhancer := newTestEnhancer(t, gen, &fakeFetcher{}, &fakeUploader{}, transform, &sleepLog{})

	result, err := enhancer.EnhanceAll(context.Background(), ProductContext{ID: "p1"}, []string{src})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("empty result must not count as a failure, got %+v", result.Failures)
	}
	want, _ := transform.Build(src)
	if len(result.Pairs) != 1 || result.Pairs[0].Enhanced == nil || *result.Pairs[0].Enhanced != want {
		t.Fatalf("expected fallback %s, got %+v", want, result.Pairs)
	}
}

func TestEnhanceAllWithoutFallbackLeavesEnhancedNil(t *testing.T) {
	src := "https://img/1.jpg"
	gen := &scriptedGenerator{}
	enhancer := newTestEnhancer(t, gen, &fakeFetcher{}, &fakeUploader{fail: true}, nil, &sleepLog{})

	result, err := enhancer.EnhanceAll(context.Background(), ProductContext{ID: "p1"}, []string{src})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Pairs) != 1 || result.Pairs[0].Enhanced != nil {
		t.Fatalf("expected a pair with nil enhanced, got %+v", result.Pairs)
	}
}

func TestEnhanceAllDecodesBase64Text(t *testing.T) {
	src := "https://img/1.jpg"
	gen := &scriptedGenerator{responses: map[string]*provider.Response{
		src: {Text: base64PNG()},
	}}
	up := &fakeUploader{}
	enhancer := newTestEnhancer(t, gen, &fakeFetcher{}, up, nil, &sleepLog{})

	result, err := enhancer.EnhanceAll(context.Background(), ProductContext{ID: "p9"}, []string{src})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(up.folders) != 1 || result.Pairs[0].Enhanced == nil {
		t.Fatalf("expected base64 payload to be uploaded, got %+v", result.Pairs)
	}
}

func TestEnhanceAllRecordsFetchFailure(t *testing.T) {
	urls := []string{"https://img/missing.jpg", "https://img/ok.jpg"}
	fetcher := &fakeFetcher{failFor: map[string]error{urls[0]: errors.New("404")}}
	sleeps := &sleepLog{}
	enhancer := newTestEnhancer(t, &scriptedGenerator{}, fetcher, &fakeUploader{}, nil, sleeps)

	result, err := enhancer.EnhanceAll(context.Background(), ProductContext{ID: "p1"}, urls)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Failures) != 1 || len(result.Pairs) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(sleeps.waits) != 0 {
		t.Fatal("non rate-limit failures must not cool down")
	}
}

func TestEnhanceAllStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	enhancer := newTestEnhancer(t, &scriptedGenerator{}, &fakeFetcher{}, &fakeUploader{}, nil, &sleepLog{})

	_, err := enhancer.EnhanceAll(ctx, ProductContext{ID: "p1"}, []string{"https://img/1.jpg"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
