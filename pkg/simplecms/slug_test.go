package simplecms

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World!", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Go 1.24 -- Released", "go-1-24-released"},
		{"already-a-slug", "already-a-slug"},
		{"Ünïcödé Café", "n-c-d-caf"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("hello-world"))
	assert.True(t, ValidSlug("2024"))
	assert.False(t, ValidSlug(""))
	assert.False(t, ValidSlug("Hello"))
	assert.False(t, ValidSlug("double--hyphen"))
	assert.False(t, ValidSlug("-leading"))
	assert.False(t, ValidSlug("trailing-"))
}

func TestResolveSlug(t *testing.T) {
	slug, err := resolveSlug("My Title", "")
	require.NoError(t, err)
	assert.Equal(t, "my-title", slug)

	slug, err = resolveSlug("My Title", "custom")
	require.NoError(t, err)
	assert.Equal(t, "custom", slug)

	_, err = resolveSlug("???", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = resolveSlug("My Title", strings.Repeat("a", maxSlugLength+1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResolveSlugLongTitle(t *testing.T) {
	slug, err := resolveSlug(strings.Repeat("word ", 50), "")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(slug), maxSlugLength)
	assert.True(t, ValidSlug(slug))
	assert.True(t, strings.HasSuffix(slug, "-word"))
}

func TestTruncateSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"fits", "hello-world", 20, "hello-world"},
		{"word boundary", "hello-world-again", 14, "hello-world"},
		{"cut lands on hyphen", "hello-world-again", 11, "hello-world"},
		{"hyphen right after cut", "hello-world-again", 12, "hello-world"},
		{"single long word", "abcdefghij", 4, "abcd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateSlug(tt.in, tt.max))
		})
	}
}

func TestIsSlugAvailable(t *testing.T) {
	ctx := context.Background()
	holder := uuid.New()
	owner := func(ctx context.Context, slug string) (uuid.UUID, error) {
		if slug == "taken" {
			return holder, nil
		}
		return uuid.Nil, nil
	}

	ok, err := isSlugAvailable(ctx, owner, "free", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = isSlugAvailable(ctx, owner, "taken", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = isSlugAvailable(ctx, owner, "taken", holder)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = isSlugAvailable(ctx, owner, "taken", uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	boom := errors.New("boom")
	_, err = isSlugAvailable(ctx, func(context.Context, string) (uuid.UUID, error) { return uuid.Nil, boom }, "x", uuid.Nil)
	assert.ErrorIs(t, err, boom)
}
