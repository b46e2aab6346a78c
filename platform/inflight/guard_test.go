package inflight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestGuard(t *testing.T) (*Guard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, time.Minute), mr
}

func TestAcquireRejectsSecondHolder(t *testing.T) {
	g, _ := newTestGuard(t)
	ctx := context.Background()

	release, err := g.Acquire(ctx, "enhance", "p1")
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer release()

	if _, err := g.Acquire(ctx, "enhance", "p1"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if r, err := g.Acquire(ctx, "suggest", "p1"); err != nil {
		t.Fatalf("different operation should not conflict: %v", err)
	} else {
		r()
	}
}

func TestReleaseAllowsReacquire(t *testing.T) {
	g, _ := newTestGuard(t)
	ctx := context.Background()

	release, err := g.Acquire(ctx, "enhance", "p2")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	release()
	release()

	again, err := g.Acquire(ctx, "enhance", "p2")
	if err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
	again()
}

func TestKeyExpiresAfterTTL(t *testing.T) {
	g, mr := newTestGuard(t)
	ctx := context.Background()

	if _, err := g.Acquire(ctx, "enhance", "p3"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	release, err := g.Acquire(ctx, "enhance", "p3")
	if err != nil {
		t.Fatalf("expected key to expire: %v", err)
	}
	release()
}

func TestNilGuardAdmitsEverything(t *testing.T) {
	var g *Guard
	release, err := g.Acquire(context.Background(), "enhance", "p4")
	if err != nil {
		t.Fatalf("nil guard: %v", err)
	}
	release()
}
