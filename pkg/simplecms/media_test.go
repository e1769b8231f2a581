package simplecms_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/internal/testutil"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
)

func TestMediaLifecycle(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	uploader := uuid.New()

	m, err := env.Service.UploadMedia(ctx, simplecms.UploadMediaInput{
		Reader:           strings.NewReader("fake png bytes"),
		OriginalFilename: "Team Photo.PNG",
		MimeType:         "image/png",
		AltText:          "The team",
	}, uploader)
	require.NoError(t, err)

	assert.Equal(t, "team-photo.png", m.Filename)
	assert.Equal(t, "Team Photo.PNG", m.OriginalFilename)
	assert.EqualValues(t, len("fake png bytes"), m.SizeBytes)
	assert.Equal(t, simplecms.MediaObjectKey(m.ID, "team-photo.png"), m.ObjectKey)
	assert.True(t, env.Blobs.Exists(m.ObjectKey))
	assert.Equal(t, "image/png", env.Blobs.MimeType(m.ObjectKey))

	rc, got, err := env.Service.DownloadMedia(ctx, m.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	_ = rc.Close()
	assert.Equal(t, "fake png bytes", string(data))
	assert.Equal(t, m.ID, got.ID)

	items, total, err := env.Service.ListMedia(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)

	_, err = env.Service.MediaDownloadURL(ctx, m.ID)
	assert.ErrorIs(t, err, simplecms.ErrStorage, "memory backend has no direct URLs")

	article, err := env.Service.Articles().Create(ctx, simplecms.CreateInput{
		Title:        "With cover",
		CoverImageID: &m.ID,
	}, uploader)
	require.NoError(t, err)
	require.NotNil(t, article.CoverImageID)

	require.NoError(t, env.Service.DeleteMedia(ctx, m.ID, uploader))
	assert.False(t, env.Blobs.Exists(m.ObjectKey))

	_, err = env.Service.GetMedia(ctx, m.ID)
	assert.ErrorIs(t, err, simplecms.ErrNotFound)

	reloaded, err := env.Service.Articles().Get(ctx, article.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CoverImageID, "deleting media clears covers")

	assert.Equal(t, []string{"upload", "create", "delete"}, env.Audit.Actions())
}

func TestUploadMedia_Validation(t *testing.T) {
	env := testutil.NewEnv(t)
	_, err := env.Service.UploadMedia(context.Background(), simplecms.UploadMediaInput{
		Reader:   strings.NewReader("x"),
		MimeType: "text/plain",
	}, uuid.Nil)
	assert.ErrorIs(t, err, simplecms.ErrInvalidInput)
}

func TestUploadMedia_NoBlobStore(t *testing.T) {
	svc, err := simplecms.New(simplecms.WithRepository(memory.New()))
	require.NoError(t, err)

	_, err = svc.UploadMedia(context.Background(), simplecms.UploadMediaInput{
		Reader:           strings.NewReader("x"),
		OriginalFilename: "a.txt",
		MimeType:         "text/plain",
	}, uuid.Nil)
	assert.ErrorIs(t, err, simplecms.ErrStorage)
}

func TestDeleteMedia_MissingBlob(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)

	m, err := env.Service.UploadMedia(ctx, simplecms.UploadMediaInput{
		Reader:           strings.NewReader("x"),
		OriginalFilename: "notes.txt",
		MimeType:         "text/plain",
	}, uuid.Nil)
	require.NoError(t, err)
	require.NoError(t, env.Blobs.Delete(ctx, m.ObjectKey))

	_, _, err = env.Service.DownloadMedia(ctx, m.ID)
	assert.ErrorIs(t, err, simplecms.ErrNotFound)

	require.NoError(t, env.Service.DeleteMedia(ctx, m.ID, uuid.Nil))
}

func TestCoverImage_MustExist(t *testing.T) {
	env := testutil.NewEnv(t)
	missing := uuid.New()
	_, err := env.Service.Articles().Create(context.Background(), simplecms.CreateInput{
		Title:        "Bad cover",
		CoverImageID: &missing,
	}, uuid.Nil)
	assert.ErrorIs(t, err, simplecms.ErrInvalidInput)
}
