package scheduler

import (
	"context"
	"errors"
	"fmt"

	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// AIJobProcessor runs the AI pipelines for a queued product.
type AIJobProcessor interface {
	ProcessEnhanceImages(ctx context.Context, productID uuid.UUID) error
	ProcessGenerateSuggestions(ctx context.Context, productID uuid.UUID) error
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor AIJobProcessor
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, processor AIJobProcessor, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server:    server,
		mux:       asynq.NewServeMux(),
		processor: processor,
		log:       log,
	}
	w.registerHandlers()
	return w, nil
}

func (w *Worker) registerHandlers() {
	w.mux.HandleFunc(TaskEnhanceImages, w.handleEnhanceImages)
	w.mux.HandleFunc(TaskGenerateSuggestions, w.handleGenerateSuggestions)
}

func (w *Worker) handleEnhanceImages(ctx context.Context, task *asynq.Task) error {
	productID, err := ParseProductPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	ctx = logger.ContextWithProductID(ctx, productID.String())
	return w.finish(ctx, task, w.processor.ProcessEnhanceImages(ctx, productID))
}

func (w *Worker) handleGenerateSuggestions(ctx context.Context, task *asynq.Task) error {
	productID, err := ParseProductPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	ctx = logger.ContextWithProductID(ctx, productID.String())
	return w.finish(ctx, task, w.processor.ProcessGenerateSuggestions(ctx, productID))
}

// finish drops tasks whose failure a retry cannot fix.
func (w *Worker) finish(ctx context.Context, task *asynq.Task, err error) error {
	if err == nil {
		return nil
	}
	log := w.log.WithContext(ctx)
	switch apperr.GetKind(err) {
	case apperr.KindNotFound, apperr.KindValidation, apperr.KindBadRequest, apperr.KindConflict:
		log.Warn("ai task dropped", "task", task.Type(), "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	log.Error("ai task failed", "task", task.Type(), "error", err)
	return err
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("ai worker stopped", "error", err)
	}
}
