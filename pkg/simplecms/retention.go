package simplecms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RetentionWindow is how long a trashed item is kept before it becomes
// eligible for permanent erasure.
const RetentionWindow = 30 * 24 * time.Hour

// RetentionCutoff returns the trashed_at bound for erasure at now: items
// trashed strictly before the cutoff are eligible.
func RetentionCutoff(now time.Time) time.Time {
	return now.Add(-RetentionWindow)
}

// PurgeEligible is the erasure predicate shared by empty-trash and the
// scheduler sweep. Repositories implement the same predicate set-wise.
func PurgeEligible(item *Item, now time.Time) bool {
	return item.Status == StatusTrashed &&
		item.TrashedAt != nil &&
		item.TrashedAt.Before(RetentionCutoff(now))
}

// purgeTrash erases eligible items of every kind. A failure on one kind does
// not stop the others; the errors are joined.
func purgeTrash(ctx context.Context, repo ItemRepository, now time.Time) (*TrashPurge, error) {
	cutoff := RetentionCutoff(now)
	result := &TrashPurge{}
	var errs []error
	for _, kind := range Kinds {
		n, err := repo.PurgeTrashed(ctx, kind, cutoff)
		if err != nil {
			errs = append(errs, fmt.Errorf("purge %s trash: %w", kind, err))
			continue
		}
		switch kind {
		case KindPage:
			result.Pages = n
		case KindArticle:
			result.Articles = n
		}
	}
	return result, errors.Join(errs...)
}

// EmptyTrash permanently erases every item whose retention window elapsed.
// Items trashed more recently are left alone. Safe to run concurrently with
// the scheduler sweep.
func (s *service) EmptyTrash(ctx context.Context) (*TrashPurge, error) {
	result, err := purgeTrash(ctx, s.repository, s.now())
	if err != nil {
		return nil, s.fail("trash", "empty", uuid.Nil, err)
	}
	return result, nil
}

// ListTrash returns trashed pages and articles, most recently trashed first.
func (s *service) ListTrash(ctx context.Context) (*TrashListing, error) {
	pages, err := s.repository.ListTrashed(ctx, KindPage)
	if err != nil {
		return nil, s.fail("trash", "list", uuid.Nil, err)
	}
	articles, err := s.repository.ListTrashed(ctx, KindArticle)
	if err != nil {
		return nil, s.fail("trash", "list", uuid.Nil, err)
	}
	return &TrashListing{Pages: pages, Articles: articles}, nil
}
