package redisad

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrLockBusy is returned when another holder kept the lock past the wait budget.
var ErrLockBusy = errors.New("lock held elsewhere")

// Locker runs critical sections under a redislock mutex. Callers wait for the
// current holder with linear backoff until ctx is done.
type Locker struct {
	lc   *redislock.Client
	poll time.Duration
}

func NewLocker(c *redis.Client) *Locker {
	return &Locker{lc: redislock.New(c), poll: 100 * time.Millisecond}
}

func (l *Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	lock, err := l.lc.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.poll),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return fmt.Errorf("%s: %w", key, ErrLockBusy)
	}
	// LinearBackoff retries until ctx ends (or ttl, when ctx has no deadline)
	// and then reports the context error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", key, ErrLockBusy, err)
	}
	if err != nil {
		return fmt.Errorf("obtain %s: %w", key, err)
	}
	defer func() {
		// the section may have run past ttl; ErrLockNotHeld then only means it expired
		if rerr := lock.Release(context.WithoutCancel(ctx)); rerr != nil && !errors.Is(rerr, redislock.ErrLockNotHeld) {
			log.Warn().Err(rerr).Str("key", key).Msg("failed to release lock")
		}
	}()
	return fn(ctx)
}
