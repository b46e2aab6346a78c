// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// ProductIDKey is the context key for the product being processed
	ProductIDKey contextKey = "product_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and product_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if productID, ok := ctx.Value(ProductIDKey).(string); ok && productID != "" {
		newLogger = newLogger.WithProductID(productID)
	}

	return newLogger
}

// ContextWithProductID stores the product id for WithContext.
func ContextWithProductID(ctx context.Context, productID string) context.Context {
	return context.WithValue(ctx, ProductIDKey, productID)
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// WithProductID returns a logger scoped to a product
func (l *Logger) WithProductID(productID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("product_id", productID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// HTTPError logs an HTTP error
func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("client_ip", clientIP),
	)
}

// ProviderCall logs the outcome of one generative provider invocation.
func (l *Logger) ProviderCall(provider, operation string, latencyMs float64, err error) {
	if err == nil {
		l.Debug("provider_call",
			slog.String("provider", provider),
			slog.String("operation", operation),
			slog.Float64("latency_ms", latencyMs),
		)
		return
	}
	l.Warn("provider_call",
		slog.String("provider", provider),
		slog.String("operation", operation),
		slog.Float64("latency_ms", latencyMs),
		slog.String("error", err.Error()),
	)
}

// ProviderRetry logs a transient provider failure that will be retried.
func (l *Logger) ProviderRetry(operation string, attempt int, delayMs int64, err error) {
	l.Warn("provider_retry",
		slog.String("operation", operation),
		slog.Int("attempt", attempt),
		slog.Int64("delay_ms", delayMs),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
