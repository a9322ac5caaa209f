package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type retryPolicy struct {
	attempts int
	delay    time.Duration
}

func newRetryPolicy(cfg Config) retryPolicy {
	p := retryPolicy{attempts: cfg.Retries, delay: time.Duration(cfg.RetryDelayMs) * time.Millisecond}
	if p.attempts < 1 {
		p.attempts = 1
	}
	if p.delay < 0 {
		p.delay = 0
	}
	return p
}

// Pool runs transactional units of work over a pooled *gorm.DB.
type Pool struct {
	db     *gorm.DB
	policy retryPolicy
	logger *zap.Logger
}

// NewPool wraps db with the retry policy taken from cfg.
func NewPool(db *gorm.DB, cfg Config, logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{db: db, policy: newRetryPolicy(cfg), logger: logger}
}

// DB exposes the underlying handle for read-only helpers such as schema verification.
func (p *Pool) DB() *gorm.DB {
	return p.db
}

// WithTx runs fn inside a single transaction holding one pooled connection.
// The transaction commits when fn returns nil and rolls back otherwise.
// Transient connectivity failures rerun the whole unit up to the configured
// number of attempts, waiting the fixed delay in between; when attempts run
// out the last failure is returned wrapped in ErrUnavailable.
func (p *Pool) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.policy.attempts; attempt++ {
		err := p.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err

		p.logger.Warn("Transient database failure",
			zap.Int("attempt", attempt),
			zap.Int("attempts", p.policy.attempts),
			zap.Error(err),
		)
		if attempt == p.policy.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.policy.delay):
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrUnavailable, p.policy.attempts, lastErr)
}

func (p *Pool) runTx(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	tx := p.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		rbErr := tx.Rollback().Error
		if rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && !IsTransient(err) {
			return fmt.Errorf("%w: rollback failed: %v: %w", ErrUnavailable, rbErr, err)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
