package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCmdable struct {
	values      map[string]int64
	expireCalls []string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{values: map[string]int64{}}
}

func (m *mockCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	v, ok := m.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(strconv.FormatInt(v, 10))
	return cmd
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.values[key]++
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(m.values[key])
	return cmd
}

func (m *mockCmdable) Expire(ctx context.Context, key string, _ time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, key)
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func TestRedisStoreIncrWithTTL(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	s := &RedisStore{store: mock}

	n, err := s.IncrWithTTL(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.Len(t, mock.expireCalls, 1)

	n, err = s.IncrWithTTL(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Len(t, mock.expireCalls, 1)

	count, err := s.Count(ctx, "k")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = s.Count(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.NoError(t, s.Ping(ctx))
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "")
	require.Error(t, err)

	_, err = NewRedisStore(context.Background(), "http://not-redis")
	require.Error(t, err)
}

func TestFailureKey(t *testing.T) {
	assert.Equal(t, "exchangeapi:auth_fail:10.0.0.1:m-1", failureKey("10.0.0.1", "m-1"))
	assert.Equal(t, "exchangeapi:auth_fail:10.0.0.1:-", failureKey("10.0.0.1", ""))
}

func TestGuardThrottlesAfterLimit(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(&RedisStore{store: newMockCmdable()}, 2, time.Minute, nil)

	assert.False(t, g.Exceeded(ctx, "10.0.0.1", "m-1"))
	g.RecordFailure(ctx, "10.0.0.1", "m-1")
	assert.False(t, g.Exceeded(ctx, "10.0.0.1", "m-1"))
	g.RecordFailure(ctx, "10.0.0.1", "m-1")
	assert.True(t, g.Exceeded(ctx, "10.0.0.1", "m-1"))

	assert.False(t, g.Exceeded(ctx, "10.0.0.2", "m-1"))
	assert.False(t, g.Exceeded(ctx, "10.0.0.1", "m-2"))
}

type failingCounter struct{}

func (failingCounter) IncrWithTTL(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("redis down")
}

func (failingCounter) Count(context.Context, string) (int64, error) {
	return 0, errors.New("redis down")
}

func TestGuardFailsOpen(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(failingCounter{}, 1, time.Minute, nil)
	g.RecordFailure(ctx, "10.0.0.1", "m-1")
	assert.False(t, g.Exceeded(ctx, "10.0.0.1", "m-1"))
}

func TestDisabledGuard(t *testing.T) {
	ctx := context.Background()
	var nilGuard *Guard
	assert.False(t, nilGuard.Exceeded(ctx, "10.0.0.1", "m-1"))
	nilGuard.RecordFailure(ctx, "10.0.0.1", "m-1")

	g := NewGuard(nil, 5, time.Minute, nil)
	assert.False(t, g.Exceeded(ctx, "10.0.0.1", "m-1"))
}
