package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisKV(client)
}

func TestRedisKV_MissIsErrMiss(t *testing.T) {
	_, kv := setupTestRedis(t)

	_, err := kv.Get(context.Background(), "wizard.draft")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_SetGetRoundTrip(t *testing.T) {
	mr, kv := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "auth.accessToken", "access-1", 0))
	got, err := kv.Get(ctx, "auth.accessToken")
	require.NoError(t, err)
	assert.Equal(t, "access-1", got)

	// overwrite
	require.NoError(t, kv.Set(ctx, "auth.accessToken", "access-2", 0))
	got, err = kv.Get(ctx, "auth.accessToken")
	require.NoError(t, err)
	assert.Equal(t, "access-2", got)

	raw, err := mr.Get("auth.accessToken")
	require.NoError(t, err)
	assert.Equal(t, "access-2", raw)
}

func TestRedisKV_TTLExpires(t *testing.T) {
	mr, kv := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "wizard.draft", `{"currentStep":2}`, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := kv.Get(ctx, "wizard.draft")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_Delete(t *testing.T) {
	mr, kv := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "wizard.draft", "{}", 0))
	require.NoError(t, kv.Delete(ctx, "wizard.draft"))
	assert.False(t, mr.Exists("wizard.draft"))

	_, err := kv.Get(ctx, "wizard.draft")
	assert.ErrorIs(t, err, ErrMiss)

	// deleting a missing key is not an error
	assert.NoError(t, kv.Delete(ctx, "wizard.draft"))
}
