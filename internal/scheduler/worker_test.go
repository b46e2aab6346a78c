package scheduler

import (
	"context"
	"errors"
	"testing"

	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type stubProcessor struct {
	enhanced  []uuid.UUID
	suggested []uuid.UUID
	ctxIDs    []string
	err       error
}

func (s *stubProcessor) ProcessEnhanceImages(ctx context.Context, id uuid.UUID) error {
	s.enhanced = append(s.enhanced, id)
	s.record(ctx)
	return s.err
}

func (s *stubProcessor) ProcessGenerateSuggestions(ctx context.Context, id uuid.UUID) error {
	s.suggested = append(s.suggested, id)
	s.record(ctx)
	return s.err
}

func (s *stubProcessor) record(ctx context.Context) {
	id, _ := ctx.Value(logger.ProductIDKey).(string)
	s.ctxIDs = append(s.ctxIDs, id)
}

func newTestWorker(p AIJobProcessor) *Worker {
	w := &Worker{mux: asynq.NewServeMux(), processor: p, log: logger.New("test")}
	w.registerHandlers()
	return w
}

func TestTaskRoundTripsProductID(t *testing.T) {
	id := uuid.New()
	task, err := NewEnhanceImagesTask(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type() != TaskEnhanceImages {
		t.Fatalf("unexpected type %q", task.Type())
	}
	got, err := ParseProductPayload(task)
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s (%v)", id, got, err)
	}
}

func TestWorkerDispatchesByTaskType(t *testing.T) {
	p := &stubProcessor{}
	w := newTestWorker(p)
	id := uuid.New()

	task, _ := NewGenerateSuggestionsTask(id)
	if err := w.mux.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.suggested) != 1 || p.suggested[0] != id || len(p.enhanced) != 0 {
		t.Fatalf("unexpected dispatch: %+v", p)
	}
	if p.ctxIDs[0] != id.String() {
		t.Fatalf("expected product id in task context, got %q", p.ctxIDs[0])
	}
}

func TestWorkerSkipsRetryForMissingProduct(t *testing.T) {
	w := newTestWorker(&stubProcessor{err: apperr.NotFound("product not found")})
	task, _ := NewEnhanceImagesTask(uuid.New())

	err := w.mux.ProcessTask(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestWorkerRetriesProviderFailures(t *testing.T) {
	w := newTestWorker(&stubProcessor{err: apperr.Unavailable("busy")})
	task, _ := NewEnhanceImagesTask(uuid.New())

	err := w.mux.ProcessTask(context.Background(), task)
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestMalformedPayloadIsNotRetried(t *testing.T) {
	w := newTestWorker(&stubProcessor{})
	task := asynq.NewTask(TaskEnhanceImages, []byte(`{"productId":"nope"}`))

	if err := w.mux.ProcessTask(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}
