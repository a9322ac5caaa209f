package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLocked is returned when another run already holds the lock.
var ErrLocked = errors.New("another ingestion run is in progress")

// heldLock is a lock currently owned by this process.
type heldLock interface {
	Refresh(ctx context.Context, ttl time.Duration, opt *redislock.Options) error
	Release(ctx context.Context) error
}

type obtainer interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (heldLock, error)
}

// redisObtainer adapts redislock.Client to obtainer.
type redisObtainer struct {
	client *redislock.Client
}

func (o redisObtainer) Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (heldLock, error) {
	lk, err := o.client.Obtain(ctx, key, ttl, opt)
	if err != nil {
		return nil, err
	}
	return lk, nil
}

// RunLock serializes ingestion runs against one store.
// A RunLock built without a redis address never blocks.
// While held, the lock is refreshed every half TTL so a run may outlast the TTL.
type RunLock struct {
	rdb     *redis.Client
	locker  obtainer
	key     string
	ttl     time.Duration
	refresh time.Duration
	logger  *zap.Logger
}

// New connects to redis when an address is configured.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*RunLock, error) {
	l := &RunLock{key: cfg.Key, ttl: time.Duration(cfg.TTLSeconds) * time.Second, logger: logger}
	if l.key == "" {
		l.key = "medifinder:ingest"
	}
	if l.ttl <= 0 {
		l.ttl = time.Hour
	}
	l.refresh = l.ttl / 2
	if cfg.RedisAddress == "" {
		return l, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddress, err)
	}

	l.rdb = rdb
	l.locker = redisObtainer{client: redislock.New(rdb)}
	return l, nil
}

// Enabled reports whether the lock is backed by redis.
func (l *RunLock) Enabled() bool {
	return l.locker != nil
}

// Acquire takes the run lock and keeps it alive until the returned release
// func is called. The release func is always safe to call.
func (l *RunLock) Acquire(ctx context.Context) (func(context.Context), error) {
	if l.locker == nil {
		return func(context.Context) {}, nil
	}

	held, err := l.locker.Obtain(ctx, l.key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w (key %s)", ErrLocked, l.key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain run lock: %w", err)
	}
	l.logger.Debug("Run lock acquired", zap.String("key", l.key), zap.Duration("ttl", l.ttl))

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(held, stop, done)

	var once sync.Once
	return func(ctx context.Context) {
		once.Do(func() {
			close(stop)
			<-done
			if err := held.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				l.logger.Warn("Failed to release run lock", zap.String("key", l.key), zap.Error(err))
			}
		})
	}, nil
}

// keepAlive extends the TTL until stop is closed. A failed refresh is logged
// and retried on the next tick; once the key is gone it gives up.
func (l *RunLock) keepAlive(held heldLock, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := l.refresh
	if interval <= 0 {
		interval = l.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			err := held.Refresh(ctx, l.ttl, nil)
			cancel()
			switch {
			case err == nil:
				l.logger.Debug("Run lock refreshed", zap.String("key", l.key))
			case errors.Is(err, redislock.ErrNotObtained):
				l.logger.Error("Run lock lost, another run may start", zap.String("key", l.key))
				return
			default:
				l.logger.Warn("Failed to refresh run lock", zap.String("key", l.key), zap.Error(err))
			}
		}
	}
}

// Close releases the redis connection.
func (l *RunLock) Close() error {
	if l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}
