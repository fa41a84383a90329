package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T, ttl time.Duration) (*DedupChecker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDedupChecker(client, ttl), mr
}

func TestDedupChecker_MarkThenDuplicate(t *testing.T) {
	ctx := context.Background()
	d, mr := newTestChecker(t, time.Hour)

	dup, err := d.IsDuplicate(ctx, "msg_1")
	require.NoError(t, err)
	require.False(t, dup)

	require.NoError(t, d.Mark(ctx, "msg_1"))

	dup, err = d.IsDuplicate(ctx, "msg_1")
	require.NoError(t, err)
	require.True(t, dup)
	require.True(t, mr.Exists("dedup:identity:msg_1"))
	require.Equal(t, time.Hour, mr.TTL("dedup:identity:msg_1"))

	dup, err = d.IsDuplicate(ctx, "msg_2")
	require.NoError(t, err)
	require.False(t, dup)
}

func TestDedupChecker_Expires(t *testing.T) {
	ctx := context.Background()
	d, mr := newTestChecker(t, time.Minute)

	require.NoError(t, d.Mark(ctx, "msg_1"))
	mr.FastForward(2 * time.Minute)

	dup, err := d.IsDuplicate(ctx, "msg_1")
	require.NoError(t, err)
	require.False(t, dup)
}

func TestDedupChecker_DefaultTTL(t *testing.T) {
	d, mr := newTestChecker(t, 0)

	require.NoError(t, d.Mark(context.Background(), "msg_1"))
	require.Equal(t, 24*time.Hour, mr.TTL("dedup:identity:msg_1"))
}

func TestDedupChecker_ServerDown(t *testing.T) {
	d, mr := newTestChecker(t, time.Hour)
	mr.Close()

	_, err := d.IsDuplicate(context.Background(), "msg_1")
	require.Error(t, err)
}
