package lock

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bsm/redislock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockObtainer struct {
	mock.Mock
}

func (m *mockObtainer) Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (heldLock, error) {
	args := m.Called(ctx, key, ttl, opt)
	lk, _ := args.Get(0).(heldLock)
	return lk, args.Error(1)
}

type mockHeld struct {
	mock.Mock
	refreshes atomic.Int32
}

func (m *mockHeld) Refresh(ctx context.Context, ttl time.Duration, opt *redislock.Options) error {
	m.refreshes.Add(1)
	return m.Called(ttl).Error(0)
}

func (m *mockHeld) Release(ctx context.Context) error {
	return m.Called().Error(0)
}

func refreshCalls(h *mockHeld) int {
	return int(h.refreshes.Load())
}

func TestNew_Disabled(t *testing.T) {
	l, err := New(context.Background(), Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, l.Enabled())
	assert.Equal(t, "medifinder:ingest", l.key)
	assert.Equal(t, time.Hour, l.ttl)

	release, err := l.Acquire(context.Background())
	require.NoError(t, err)
	release(context.Background())
	assert.NoError(t, l.Close())
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	l, err := New(ctx, Config{RedisAddress: "127.0.0.1:1"}, zap.NewNop())
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestAcquire_Contended(t *testing.T) {
	ob := new(mockObtainer)
	ob.On("Obtain", mock.Anything, "medifinder:ingest", 10*time.Second, (*redislock.Options)(nil)).
		Return(nil, redislock.ErrNotObtained)

	l := &RunLock{locker: ob, key: "medifinder:ingest", ttl: 10 * time.Second, logger: zap.NewNop()}
	release, err := l.Acquire(context.Background())

	assert.ErrorIs(t, err, ErrLocked)
	assert.Nil(t, release)
	ob.AssertExpectations(t)
}

func TestAcquire_RedisError(t *testing.T) {
	ob := new(mockObtainer)
	ob.On("Obtain", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset"))

	l := &RunLock{locker: ob, key: "k", ttl: time.Minute, logger: zap.NewNop()}
	_, err := l.Acquire(context.Background())

	assert.ErrorContains(t, err, "connection reset")
	assert.NotErrorIs(t, err, ErrLocked)
}

func TestAcquire_RefreshesUntilReleased(t *testing.T) {
	held := new(mockHeld)
	held.On("Refresh", 40*time.Millisecond).Return(nil)
	held.On("Release").Return(nil).Once()

	ob := new(mockObtainer)
	ob.On("Obtain", mock.Anything, "k", 40*time.Millisecond, (*redislock.Options)(nil)).Return(held, nil)

	l := &RunLock{locker: ob, key: "k", ttl: 40 * time.Millisecond, refresh: 10 * time.Millisecond, logger: zap.NewNop()}
	release, err := l.Acquire(context.Background())
	require.NoError(t, err)

	// Outlive the TTL several times over.
	time.Sleep(150 * time.Millisecond)
	release(context.Background())
	release(context.Background())

	refreshed := refreshCalls(held)
	assert.GreaterOrEqual(t, refreshed, 3)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, refreshed, refreshCalls(held), "refresh must stop after release")
	held.AssertNumberOfCalls(t, "Release", 1)
}

func TestAcquire_LostLockIsReported(t *testing.T) {
	held := new(mockHeld)
	held.On("Refresh", mock.Anything).Return(redislock.ErrNotObtained)
	held.On("Release").Return(redislock.ErrLockNotHeld)

	ob := new(mockObtainer)
	ob.On("Obtain", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(held, nil)

	core, logs := observer.New(zapcore.WarnLevel)
	l := &RunLock{locker: ob, key: "k", ttl: time.Second, refresh: 5 * time.Millisecond, logger: zap.New(core)}
	release, err := l.Acquire(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("Run lock lost, another run may start").Len() == 1
	}, time.Second, 5*time.Millisecond)

	release(context.Background())
	assert.Equal(t, 1, refreshCalls(held))
	assert.Zero(t, logs.FilterMessage("Failed to release run lock").Len())
}

func TestAcquire_RefreshErrorsAreRetried(t *testing.T) {
	held := new(mockHeld)
	held.On("Refresh", mock.Anything).Return(errors.New("i/o timeout")).Once()
	held.On("Refresh", mock.Anything).Return(nil)
	held.On("Release").Return(nil)

	ob := new(mockObtainer)
	ob.On("Obtain", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(held, nil)

	core, logs := observer.New(zapcore.WarnLevel)
	l := &RunLock{locker: ob, key: "k", ttl: time.Second, refresh: 5 * time.Millisecond, logger: zap.New(core)}
	release, err := l.Acquire(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return refreshCalls(held) >= 2
	}, time.Second, 5*time.Millisecond)
	release(context.Background())

	assert.Equal(t, 1, logs.FilterMessage("Failed to refresh run lock").Len())
}
