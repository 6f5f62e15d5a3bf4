// Package redislock implements ports.AggregateLocker on Redis, for deployments
// running more than one instance of the service.
//
// Each key is a Redis string set with NX and a TTL, holding a random token.
// Release deletes the key only if it still holds the caller's token, so a lock
// that expired and was taken by another instance is left alone.
package redislock

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL        = 30 * time.Second
	DefaultRetryDelay = 20 * time.Millisecond
	releaseTimeout    = 2 * time.Second
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker struct {
	client     redis.UniversalClient
	prefix     string
	ttl        time.Duration
	retryDelay time.Duration
}

type Option func(*Locker)

// WithTTL sets how long a held key survives if its holder dies. It must exceed
// the longest critical section.
func WithTTL(ttl time.Duration) Option {
	return func(l *Locker) { l.ttl = ttl }
}

func WithRetryDelay(d time.Duration) Option {
	return func(l *Locker) { l.retryDelay = d }
}

func WithPrefix(prefix string) Option {
	return func(l *Locker) { l.prefix = prefix }
}

func New(client redis.UniversalClient, opts ...Option) *Locker {
	l := &Locker{
		client:     client,
		prefix:     "fulfillment:lock:",
		ttl:        DefaultTTL,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock acquires the keys in sorted order, polling while a key is taken. On
// failure every key acquired so far is released.
func (l *Locker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	token := uuid.NewString()
	acquired := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := l.acquire(ctx, l.prefix+key, token); err != nil {
			l.release(acquired, token)
			return nil, err
		}
		acquired = append(acquired, l.prefix+key)
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(acquired, token) })
	}, nil
}

func (l *Locker) acquire(ctx context.Context, key, token string) error {
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		t := time.NewTimer(l.retryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (l *Locker) release(keys []string, token string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	for i := len(keys) - 1; i >= 0; i-- {
		// An error leaves the key to expire on its TTL.
		_ = releaseScript.Run(ctx, l.client, []string{keys[i]}, token).Err()
	}
}
