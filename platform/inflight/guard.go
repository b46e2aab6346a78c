// Package inflight rejects duplicate concurrent runs of the same operation
// using short-lived Redis keys. A nil *Guard admits everything.
package inflight

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrBusy is returned when another holder owns the key.
var ErrBusy = errors.New("operation already in progress")

// releaseScript deletes the key only if the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Guard hands out ownership of keys.
type Guard struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// New wraps an existing client. ttl bounds how long a crashed holder blocks others.
func New(rdb redis.UniversalClient, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Guard{rdb: rdb, prefix: "inflight:", ttl: ttl}
}

// NewFromURL dials Redis from a redis:// or rediss:// URL.
func NewFromURL(redisURL string, tlsInsecure bool, ttl time.Duration) (*Guard, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if tlsInsecure {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return New(redis.NewClient(opt), ttl), nil
}

// Acquire claims operation+id. The returned release func is safe to call
// more than once and never fails the caller.
func (g *Guard) Acquire(ctx context.Context, operation, id string) (func(), error) {
	if g == nil || g.rdb == nil {
		return func() {}, nil
	}

	key := g.prefix + operation + ":" + id
	token := uuid.NewString()
	ok, err := g.rdb.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, ErrBusy
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, g.rdb, []string{key}, token).Err()
	}, nil
}

// Close releases the underlying client.
func (g *Guard) Close() error {
	if g == nil || g.rdb == nil {
		return nil
	}
	return g.rdb.Close()
}
