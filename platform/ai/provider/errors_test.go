package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		err           error
		wantTransient bool
		wantRateLimit bool
	}{
		{"429 status", http.StatusTooManyRequests, errors.New("slow down"), true, true},
		{"503 status", http.StatusServiceUnavailable, errors.New("busy"), true, false},
		{"400 status", http.StatusBadRequest, errors.New("bad request"), false, false},
		{"resource exhausted message", 0, errors.New("Error 429, RESOURCE_EXHAUSTED"), true, true},
		{"overloaded message", 0, errors.New("model is overloaded"), true, false},
		{"plain failure", 0, errors.New("invalid api key"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("gemini", tt.status, tt.err)
			if got := IsTransient(err); got != tt.wantTransient {
				t.Fatalf("IsTransient = %v, want %v", got, tt.wantTransient)
			}
			if got := IsRateLimit(err); got != tt.wantRateLimit {
				t.Fatalf("IsRateLimit = %v, want %v", got, tt.wantRateLimit)
			}
			if !errors.Is(err, tt.err) {
				t.Fatal("classified error must wrap the original")
			}
		})
	}
}

func TestClassifyPassesThrough(t *testing.T) {
	if Classify("gemini", 500, nil) != nil {
		t.Fatal("nil error must stay nil")
	}
	if err := Classify("gemini", 0, context.Canceled); err != context.Canceled {
		t.Fatalf("context errors must pass through, got %v", err)
	}

	inner := &Error{Provider: "groq", StatusCode: 429, Transient: true, RateLimit: true, Err: errors.New("x")}
	wrapped := fmt.Errorf("call: %w", inner)
	if got := Classify("gemini", 0, wrapped); got != wrapped {
		t.Fatalf("already classified error must be returned unchanged, got %v", got)
	}
}

func TestMissingFailsPermanently(t *testing.T) {
	_, err := Missing{Backend: "replicate"}.Generate(context.Background(), Request{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if IsTransient(err) {
		t.Fatal("missing provider must not be retried")
	}
}

func TestFirstImageSkipsEmpty(t *testing.T) {
	resp := &Response{Images: []Image{{MIMEType: "image/png"}, {MIMEType: "image/jpeg", Data: []byte{1}}}}
	img := resp.FirstImage()
	if img == nil || img.MIMEType != "image/jpeg" {
		t.Fatalf("expected the jpeg image, got %+v", img)
	}
	var none *Response
	if none.FirstImage() != nil || none.HasImage() {
		t.Fatal("nil response has no image")
	}
}
