package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) *MemoryLocker {
	t.Helper()
	locker := NewMemoryLocker()
	t.Cleanup(locker.Close)
	return locker
}

func TestMemoryLocker_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	locker := newTestLocker(t)
	key := KeyUsuario(42)

	acquired, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)

	// Second acquisition on the same key fails while held.
	acquired, err = locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired)

	released, err := locker.Release(ctx, key)
	require.NoError(t, err)
	assert.True(t, released)

	acquired, err = locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestMemoryLocker_ExpiredLockIsReacquirable(t *testing.T) {
	ctx := context.Background()
	locker := newTestLocker(t)
	key := KeyUsuario(7)

	acquired, err := locker.Acquire(ctx, key, time.Nanosecond)
	require.NoError(t, err)
	assert.True(t, acquired)

	time.Sleep(5 * time.Millisecond)

	acquired, err = locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestMemoryLocker_ReleaseNotHeld(t *testing.T) {
	ctx := context.Background()
	locker := newTestLocker(t)

	released, err := locker.Release(ctx, KeyUsuario(1))
	require.NoError(t, err)
	assert.False(t, released)
}

func TestMemoryLocker_AcquireWithRetry(t *testing.T) {
	ctx := context.Background()
	locker := newTestLocker(t)
	key := KeyUsuario(3)

	acquired, err := locker.Acquire(ctx, key, 20*time.Millisecond)
	require.NoError(t, err)
	require.True(t, acquired)

	// Retries until the first holder's TTL runs out.
	acquired, err = locker.AcquireWithRetry(ctx, key, time.Minute, 10, 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestMemoryLocker_AcquireWithRetryGivesUp(t *testing.T) {
	ctx := context.Background()
	locker := newTestLocker(t)
	key := KeyUsuario(9)

	acquired, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	acquired, err = locker.AcquireWithRetry(ctx, key, time.Minute, 2, time.Millisecond)
	require.NoError(t, err)
	assert.False(t, acquired)
}

func TestMemoryLocker_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	locker := newTestLocker(t)
	_, err := locker.Acquire(ctx, KeyUsuario(1), time.Minute)
	assert.Error(t, err)
}

func TestMemoryLocker_CloseIsIdempotent(t *testing.T) {
	locker := NewMemoryLocker()
	locker.Close()
	locker.Close()

	// Lock operations keep working; only the cleanup goroutine stops.
	acquired, err := locker.Acquire(context.Background(), KeyUsuario(2), time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestKeyUsuario(t *testing.T) {
	assert.Equal(t, "emprestimo:usuario:8", KeyUsuario(8))
}
