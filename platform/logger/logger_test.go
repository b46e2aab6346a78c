package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func bufferLogger(buf *bytes.Buffer) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(buf, nil))}
}

func TestWithContextAddsRequestAndProductIDs(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = ContextWithProductID(ctx, "prod-1")

	bufferLogger(&buf).WithContext(ctx).ProviderRetry("enhance-image", 1, 500, errors.New("overloaded"))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	if line["request_id"] != "req-1" || line["product_id"] != "prod-1" {
		t.Fatalf("expected ids in log line, got %v", line)
	}
	if line["msg"] != "provider_retry" || line["operation"] != "enhance-image" {
		t.Fatalf("unexpected log line %v", line)
	}
}

func TestWithContextWithoutValuesKeepsLogger(t *testing.T) {
	log := bufferLogger(&bytes.Buffer{})
	if got := log.WithContext(context.Background()); got != log {
		t.Fatal("expected the same logger when context carries no ids")
	}
}
