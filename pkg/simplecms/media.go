package simplecms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errNoBlobStore = errors.New("no blob store configured")

// MediaObjectKey returns the blob key for a media file.
func MediaObjectKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("media/%s/%s", id, filename)
}

// mediaFilename turns an uploaded file name into a safe stored name, keeping
// a lowercase extension.
func mediaFilename(original string) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	name := Slugify(strings.TrimSuffix(base, path.Ext(base)))
	if name == "" {
		name = "file"
	}
	if Slugify(strings.TrimPrefix(ext, ".")) == "" {
		ext = ""
	}
	return name + ext
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (s *service) UploadMedia(ctx context.Context, in UploadMediaInput, uploaderID uuid.UUID) (*Media, error) {
	if err := in.Validate(); err != nil {
		return nil, s.fail("media", "upload", uuid.Nil, invalidInput(err))
	}
	if s.blobStore == nil {
		return nil, s.fail("media", "upload", uuid.Nil, errNoBlobStore)
	}

	id := uuid.New()
	filename := mediaFilename(in.OriginalFilename)
	m := &Media{
		ID:               id,
		Filename:         filename,
		OriginalFilename: in.OriginalFilename,
		MimeType:         in.MimeType,
		AltText:          in.AltText,
		ObjectKey:        MediaObjectKey(id, filename),
		UploadedBy:       uploaderID,
		CreatedAt:        s.now(),
	}

	body := &countingReader{r: in.Reader}
	if err := s.blobStore.Upload(ctx, m.ObjectKey, body, m.MimeType); err != nil {
		return nil, s.fail("media", "upload", id, err)
	}
	m.SizeBytes = body.n

	if err := s.repository.CreateMedia(ctx, m); err != nil {
		if delErr := s.blobStore.Delete(ctx, m.ObjectKey); delErr != nil {
			s.logger.Warn("failed to remove orphaned media blob",
				zap.String("object_key", m.ObjectKey), zap.Error(delErr))
		}
		return nil, s.fail("media", "upload", id, err)
	}

	s.record(ctx, uploaderID, "upload", "media", id, map[string]interface{}{
		"filename":  m.Filename,
		"mime_type": m.MimeType,
		"size":      m.SizeBytes,
	})
	return m, nil
}

func (s *service) GetMedia(ctx context.Context, id uuid.UUID) (*Media, error) {
	m, err := s.repository.GetMedia(ctx, id)
	if err != nil {
		return nil, s.fail("media", "get", id, err)
	}
	return m, nil
}

// ListMedia returns media newest first with the total count.
func (s *service) ListMedia(ctx context.Context, page, perPage int) ([]*Media, int64, error) {
	f := ListFilter{Page: page, PerPage: perPage}.Normalize()
	items, total, err := s.repository.ListMedia(ctx, f.PerPage, f.Offset())
	if err != nil {
		return nil, 0, s.fail("media", "list", uuid.Nil, err)
	}
	return items, total, nil
}

func (s *service) DownloadMedia(ctx context.Context, id uuid.UUID) (io.ReadCloser, *Media, error) {
	m, err := s.repository.GetMedia(ctx, id)
	if err != nil {
		return nil, nil, s.fail("media", "download", id, err)
	}
	if s.blobStore == nil {
		return nil, nil, s.fail("media", "download", id, errNoBlobStore)
	}
	rc, err := s.blobStore.Download(ctx, m.ObjectKey)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			err = fmt.Errorf("%w: media file is missing", ErrNotFound)
		}
		return nil, nil, s.fail("media", "download", id, err)
	}
	return rc, m, nil
}

// MediaDownloadURL returns a direct URL when the blob store supports one,
// such as an S3 presigned URL.
func (s *service) MediaDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	m, err := s.repository.GetMedia(ctx, id)
	if err != nil {
		return "", s.fail("media", "download url", id, err)
	}
	if s.blobStore == nil {
		return "", s.fail("media", "download url", id, errNoBlobStore)
	}
	url, err := s.blobStore.GetDownloadURL(ctx, m.ObjectKey, m.OriginalFilename)
	if err != nil {
		return "", s.fail("media", "download url", id, err)
	}
	return url, nil
}

// DeleteMedia removes the blob and then the metadata row. A blob that is
// already gone does not block removing the row.
func (s *service) DeleteMedia(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	m, err := s.repository.GetMedia(ctx, id)
	if err != nil {
		return s.fail("media", "delete", id, err)
	}
	if s.blobStore != nil {
		if err := s.blobStore.Delete(ctx, m.ObjectKey); err != nil {
			if !errors.Is(err, ErrObjectNotFound) {
				return s.fail("media", "delete", id, err)
			}
			s.logger.Warn("media blob already missing", zap.String("object_key", m.ObjectKey))
		}
	}
	if err := s.repository.DeleteMedia(ctx, id); err != nil {
		return s.fail("media", "delete", id, err)
	}
	s.record(ctx, actorID, "delete", "media", id, map[string]interface{}{"filename": m.Filename})
	return nil
}
