package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Backend_BasicConfiguration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(context.Background(), Config{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("Defaults", func(t *testing.T) {
		backend, err := New(context.Background(), Config{
			Bucket:          "media",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "us-east-1", backend.config.Region)
		assert.Equal(t, time.Hour, backend.presignDuration)
	})

	t.Run("CustomPresignDuration", func(t *testing.T) {
		backend, err := New(context.Background(), Config{
			Bucket:          "media",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			PresignDuration: 7200,
		})
		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, backend.presignDuration)
	})
}

func TestS3Backend_PresignedDownloadURL(t *testing.T) {
	backend, err := New(context.Background(), Config{
		Bucket:          "media",
		Region:          "us-east-1",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	raw, err := backend.GetDownloadURL(context.Background(), "media/abc/photo.jpg", "photo.jpg")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/media/media/abc/photo.jpg"), u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Contains(t, u.Query().Get("response-content-disposition"), "photo.jpg")
}
