package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

type object struct {
	data     []byte
	mimeType string
}

// Backend is an in-memory implementation of the simplecms.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string]object),
	}
}

var _ simplecms.BlobStore = (*Backend)(nil)

// Upload stores content under objectKey, replacing any previous value
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader, mimeType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = object{data: data, mimeType: mimeType}
	return nil
}

// Download returns a reader over the stored bytes
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, simplecms.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return simplecms.ErrObjectNotFound
	}
	delete(b.objects, objectKey)
	return nil
}

// GetDownloadURL is not supported; content must be streamed through Download
func (b *Backend) GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error) {
	return "", errors.New("direct download required for memory backend")
}

// Exists reports whether objectKey is stored.
func (b *Backend) Exists(objectKey string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.objects[objectKey]
	return ok
}

// MimeType returns the content type recorded for objectKey.
func (b *Backend) MimeType(objectKey string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.objects[objectKey].mimeType
}
