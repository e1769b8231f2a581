package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	locker, client, err := NewFromURL(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	key := "simple-cms:test:" + uuid.NewString()
	defer client.Del(ctx, key)

	release, ok, err := locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must not acquire")

	require.NoError(t, release(ctx))

	release, ok, err = locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, release(ctx))
}

func TestNewFromURL_InvalidURL(t *testing.T) {
	_, _, err := NewFromURL(context.Background(), "not a url")
	assert.Error(t, err)
}
