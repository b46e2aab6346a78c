package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace_backend/platform/ai/provider"
)

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func transientErr() error {
	return &provider.Error{Provider: "test", StatusCode: 503, Transient: true, Err: errors.New("overloaded")}
}

func TestDoStopsAtMaxAttempts(t *testing.T) {
	rec := &sleepRecorder{}
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Second, Backoff: BackoffFixed, Sleep: rec.sleep}

	calls := 0
	_, err := Do(context.Background(), policy, nil, "generate", func(context.Context) (string, error) {
		calls++
		return "", transientErr()
	})

	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	var perr *provider.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
	if len(rec.delays) != 2 {
		t.Fatalf("expected 2 waits, got %d", len(rec.delays))
	}
}

func TestDoDoesNotRetryPermanentErrors(t *testing.T) {
	rec := &sleepRecorder{}
	policy := Policy{MaxAttempts: 5, BaseDelay: time.Second, Sleep: rec.sleep}
	permanent := &provider.Error{Provider: "test", StatusCode: 400, Err: errors.New("bad prompt")}

	calls := 0
	_, err := Do(context.Background(), policy, nil, "generate", func(context.Context) (int, error) {
		calls++
		return 0, permanent
	})

	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
	if !errors.Is(err, permanent) {
		t.Fatalf("expected the permanent error, got %v", err)
	}
	if errors.Is(err, ErrExhausted) {
		t.Fatal("permanent failure must not be reported as exhausted")
	}
	if len(rec.delays) != 0 {
		t.Fatalf("expected no waits, got %v", rec.delays)
	}
}

func TestDoReturnsFirstSuccess(t *testing.T) {
	rec := &sleepRecorder{}
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Sleep: rec.sleep}

	calls := 0
	got, err := Do(context.Background(), policy, nil, "generate", func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", transientErr()
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 2 {
		t.Fatalf("expected ok after 2 calls, got %q after %d", got, calls)
	}
}

func TestDoHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	calls := 0
	_, err := Do(ctx, policy, nil, "generate", func(context.Context) (string, error) {
		calls++
		return "", transientErr()
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestPolicyDelay(t *testing.T) {
	fixed := Policy{BaseDelay: 2 * time.Second, Backoff: BackoffFixed}
	exp := Policy{BaseDelay: 2 * time.Second, Backoff: BackoffExponential}

	tests := []struct {
		name    string
		policy  Policy
		attempt int
		want    time.Duration
	}{
		{"fixed first", fixed, 1, 2 * time.Second},
		{"fixed third", fixed, 3, 2 * time.Second},
		{"exponential first", exp, 1, 2 * time.Second},
		{"exponential second", exp, 2, 4 * time.Second},
		{"exponential third", exp, 3, 8 * time.Second},
		{"zero base", Policy{}, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Delay(tt.attempt); got != tt.want {
				t.Fatalf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestDefaultAttempts(t *testing.T) {
	calls := 0
	_, _ = Do(context.Background(), Policy{Sleep: (&sleepRecorder{}).sleep}, nil, "generate", func(context.Context) (int, error) {
		calls++
		return 0, transientErr()
	})
	if calls != DefaultMaxAttempts {
		t.Fatalf("expected %d calls, got %d", DefaultMaxAttempts, calls)
	}
}
