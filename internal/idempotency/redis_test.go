package idempotency

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashKey(t *testing.T) {
	a := HashKey("create-1")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashKey("create-1"))
	assert.NotEqual(t, a, HashKey("create-2"))
	assert.Equal(t, "idempotency:session:s1:"+a, redisKey("s1", a))
}

func TestRedisStore_RoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()
	session, key := uuid.NewString(), HashKey(uuid.NewString())

	got, err := store.CheckKey(ctx, session, key)
	require.NoError(t, err)
	assert.Nil(t, got)

	first := CachedResponse{Status: 201, Body: json.RawMessage(`{"id":1}`), Headers: map[string]string{"Content-Type": "application/json"}}
	require.NoError(t, store.StoreResult(ctx, session, key, first))
	require.NoError(t, store.StoreResult(ctx, session, key, CachedResponse{Status: 500}))

	got, err = store.CheckKey(ctx, session, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.Status)
	assert.JSONEq(t, `{"id":1}`, string(got.Body))

	other, err := store.CheckKey(ctx, uuid.NewString(), key)
	require.NoError(t, err)
	assert.Nil(t, other)
}
