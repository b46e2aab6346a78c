package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Validation("x"), http.StatusBadRequest},
		{BadRequest("x"), http.StatusBadRequest},
		{Conflict("x"), http.StatusConflict},
		{Unavailable("x"), http.StatusServiceUnavailable},
		{Upstream("x"), http.StatusBadGateway},
		{New(KindUnknown, "x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.err.HTTPStatus(); got != tt.want {
			t.Fatalf("kind %d: status %d, want %d", tt.err.Kind, got, tt.want)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("enhance: %w", Wrap(KindUpstream, "AI provider request failed", cause).WithOp("enhance-image"))

	if !Is(err, KindUpstream) {
		t.Fatalf("expected upstream kind, got %v", GetKind(err))
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause must stay reachable")
	}
	if GetKind(cause) != KindUnknown {
		t.Fatal("plain errors have no kind")
	}
}
