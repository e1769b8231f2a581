package simplecms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// engine implements Lifecycle for one content kind.
type engine struct {
	s    *service
	desc Descriptor
}

func (e *engine) Kind() Kind {
	return e.desc.Kind
}

func (e *engine) fail(op string, id uuid.UUID, err error) error {
	return e.s.fail(e.desc.EntityType, op, id, err)
}

func (e *engine) IsSlugAvailable(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	owner := func(ctx context.Context, slug string) (uuid.UUID, error) {
		return e.s.repository.SlugOwner(ctx, e.desc.Kind, slug)
	}
	ok, err := isSlugAvailable(ctx, owner, slug, excludeID)
	if err != nil {
		return false, e.fail("check slug", excludeID, err)
	}
	return ok, nil
}

func (e *engine) ensureSlugAvailable(ctx context.Context, op, slug string, excludeID uuid.UUID) error {
	ok, err := e.IsSlugAvailable(ctx, slug, excludeID)
	if err != nil {
		return err
	}
	if !ok {
		return e.fail(op, excludeID, fmt.Errorf("%w: a %s with slug %q already exists", ErrConflict, e.desc.EntityType, slug))
	}
	return nil
}

// checkReferences verifies that categories and the cover image exist.
func (e *engine) checkReferences(ctx context.Context, categoryIDs []uuid.UUID, cover *uuid.UUID) error {
	for _, id := range categoryIDs {
		if _, err := e.s.repository.GetCategory(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return errInvalidf("category %s does not exist", id)
			}
			return err
		}
	}
	if cover != nil && *cover != uuid.Nil && e.desc.HasCoverImage {
		if _, err := e.s.repository.GetMedia(ctx, *cover); err != nil {
			if errors.Is(err, ErrNotFound) {
				return errInvalidf("cover image %s does not exist", *cover)
			}
			return err
		}
	}
	return nil
}

func (e *engine) snapshot(item *Item, authorID uuid.UUID, at time.Time) *Revision {
	return &Revision{
		ID:        uuid.New(),
		ItemID:    item.ID,
		Kind:      item.Kind,
		Title:     item.Title,
		Content:   item.Content,
		ShortText: item.ShortText,
		AuthorID:  authorID,
		CreatedAt: at,
	}
}

func (e *engine) Create(ctx context.Context, in CreateInput, authorID uuid.UUID) (*Item, error) {
	if err := in.Validate(); err != nil {
		return nil, e.fail("create", uuid.Nil, invalidInput(err))
	}

	slug, err := resolveSlug(in.Title, in.Slug)
	if err != nil {
		return nil, e.fail("create", uuid.Nil, err)
	}
	if err := e.ensureSlugAvailable(ctx, "create", slug, uuid.Nil); err != nil {
		return nil, err
	}
	if err := e.checkReferences(ctx, in.CategoryIDs, in.CoverImageID); err != nil {
		return nil, e.fail("create", uuid.Nil, err)
	}

	status := in.Status
	if status == "" {
		status = StatusDraft
	}

	now := e.s.now()
	item := &Item{
		ID:           uuid.New(),
		Kind:         e.desc.Kind,
		Title:        in.Title,
		Slug:         slug,
		Content:      e.s.sanitize(in.Content),
		ShortText:    in.ShortText,
		Status:       status,
		PublishAt:    utcPtr(in.PublishAt),
		AuthorID:     authorID,
		CoverImageID: in.CoverImageID,
		CategoryIDs:  dedupeIDs(in.CategoryIDs),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if item.CoverImageID != nil && *item.CoverImageID == uuid.Nil {
		item.CoverImageID = nil
	}
	if status == StatusTrashed {
		item.TrashedAt = &now
	}
	e.desc.derive(item)

	if err := e.s.repository.CreateItem(ctx, item, e.snapshot(item, authorID, now)); err != nil {
		return nil, e.fail("create", item.ID, err)
	}

	e.s.record(ctx, authorID, "create", e.desc.EntityType, item.ID, map[string]interface{}{
		"title":  item.Title,
		"slug":   item.Slug,
		"status": string(item.Status),
	})

	e.s.logger.Debug("item created",
		zap.String("kind", string(item.Kind)),
		zap.Stringer("id", item.ID),
		zap.String("slug", item.Slug))

	return item.Clone(), nil
}

func (e *engine) Update(ctx context.Context, id uuid.UUID, in UpdateInput, editorID uuid.UUID) (*Item, error) {
	existing, err := e.s.repository.GetItem(ctx, e.desc.Kind, id)
	if err != nil {
		return nil, e.fail("update", id, err)
	}
	if err := in.Validate(); err != nil {
		return nil, e.fail("update", id, invalidInput(err))
	}

	merged := existing.Clone()
	var changed []string

	if in.Title != nil && *in.Title != existing.Title {
		merged.Title = *in.Title
		changed = append(changed, "title")
	}
	if in.Slug != nil && *in.Slug != existing.Slug {
		if err := e.ensureSlugAvailable(ctx, "update", *in.Slug, id); err != nil {
			return nil, err
		}
		merged.Slug = *in.Slug
		changed = append(changed, "slug")
	}
	if in.Content != nil {
		if content := e.s.sanitize(*in.Content); content != existing.Content {
			merged.Content = content
			changed = append(changed, "content")
		}
	}
	if in.ShortText != nil && e.desc.HasShortText && *in.ShortText != existing.ShortText {
		merged.ShortText = *in.ShortText
		changed = append(changed, "short_text")
	}
	if in.PublishAt != nil && (existing.PublishAt == nil || !existing.PublishAt.Equal(*in.PublishAt)) {
		t := in.PublishAt.UTC()
		merged.PublishAt = &t
		changed = append(changed, "publish_at")
	}
	if in.CoverImageID != nil && e.desc.HasCoverImage {
		if *in.CoverImageID == uuid.Nil {
			merged.CoverImageID = nil
		} else {
			cover := *in.CoverImageID
			merged.CoverImageID = &cover
		}
		changed = append(changed, "cover_image_id")
	}
	if in.CategoryIDs != nil {
		merged.CategoryIDs = dedupeIDs(in.CategoryIDs)
		changed = append(changed, "category_ids")
	}
	if err := e.checkReferences(ctx, in.CategoryIDs, in.CoverImageID); err != nil {
		return nil, e.fail("update", id, err)
	}

	now := e.s.now()
	if now.Before(existing.UpdatedAt) {
		now = existing.UpdatedAt
	}
	if in.Status != nil && *in.Status != existing.Status {
		merged.Status = *in.Status
		merged.TrashedAt = trashedAtFor(existing.Status, merged.Status, existing.TrashedAt, now)
		changed = append(changed, "status")
	}
	merged.UpdatedAt = now
	e.desc.derive(merged)

	if err := e.s.repository.SaveItem(ctx, merged, e.snapshot(merged, editorID, now)); err != nil {
		return nil, e.fail("update", id, err)
	}

	e.s.record(ctx, editorID, "update", e.desc.EntityType, id, map[string]interface{}{
		"changed": changed,
	})

	return merged.Clone(), nil
}

func (e *engine) transition(ctx context.Context, op string, id uuid.UUID, t Transition) (*Item, error) {
	item, err := e.s.repository.TransitionItem(ctx, e.desc.Kind, id, t)
	if err != nil {
		return nil, e.fail(op, id, err)
	}
	return item, nil
}

// Publish sets the item published from any status.
func (e *engine) Publish(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Item, error) {
	item, err := e.transition(ctx, "publish", id, Transition{
		To:        StatusPublished,
		UpdatedAt: e.s.now(),
	})
	if err != nil {
		return nil, err
	}
	e.s.record(ctx, actorID, "publish", e.desc.EntityType, id, nil)
	return item, nil
}

// Trash moves the item to the trash from any status. Trashing twice restarts
// the retention window.
func (e *engine) Trash(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Item, error) {
	now := e.s.now()
	item, err := e.transition(ctx, "trash", id, Transition{
		To:        StatusTrashed,
		TrashedAt: &now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	e.s.record(ctx, actorID, "trash", e.desc.EntityType, id, nil)
	return item, nil
}

// Restore brings a trashed item back as a draft.
func (e *engine) Restore(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Item, error) {
	existing, err := e.s.repository.GetItem(ctx, e.desc.Kind, id)
	if err != nil {
		return nil, e.fail("restore", id, err)
	}
	if ok, err := canRestore(existing.Status); !ok {
		return nil, e.fail("restore", id, err)
	}

	item, err := e.transition(ctx, "restore", id, Transition{
		To:          StatusDraft,
		RequireFrom: StatusTrashed,
		UpdatedAt:   e.s.now(),
	})
	if err != nil {
		return nil, err
	}
	e.s.record(ctx, actorID, "restore", e.desc.EntityType, id, nil)
	return item, nil
}

func (e *engine) ListRevisions(ctx context.Context, id uuid.UUID) ([]*Revision, error) {
	if _, err := e.s.repository.GetItem(ctx, e.desc.Kind, id); err != nil {
		return nil, e.fail("list revisions", id, err)
	}
	revisions, err := e.s.repository.ListRevisions(ctx, e.desc.Kind, id)
	if err != nil {
		return nil, e.fail("list revisions", id, err)
	}
	return revisions, nil
}

// RestoreRevision re-applies a revision's title and body through Update, so
// the restore itself is recorded as a new revision.
func (e *engine) RestoreRevision(ctx context.Context, id, revisionID uuid.UUID, editorID uuid.UUID) (*Item, error) {
	rev, err := e.s.repository.GetRevision(ctx, e.desc.Kind, id, revisionID)
	if err != nil {
		return nil, e.fail("restore revision", id, err)
	}

	in := UpdateInput{
		Title:   &rev.Title,
		Content: &rev.Content,
	}
	if e.desc.HasShortText {
		in.ShortText = &rev.ShortText
	}

	item, err := e.Update(ctx, id, in, editorID)
	if err != nil {
		return nil, err
	}
	e.s.record(ctx, editorID, "restore_revision", e.desc.EntityType, id, map[string]interface{}{
		"revision_id": revisionID.String(),
	})
	return item, nil
}

func (e *engine) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	item, err := e.s.repository.GetItem(ctx, e.desc.Kind, id)
	if err != nil {
		return nil, e.fail("get", id, err)
	}
	return item, nil
}

func (e *engine) GetBySlug(ctx context.Context, slug string) (*Item, error) {
	item, err := e.s.repository.GetItemBySlug(ctx, e.desc.Kind, slug)
	if err != nil {
		return nil, e.fail("get by slug", uuid.Nil, err)
	}
	if item.Status != StatusPublished {
		return nil, e.fail("get by slug", item.ID, ErrNotFound)
	}
	return item, nil
}

func (e *engine) List(ctx context.Context, filter ListFilter) (*ItemPage, error) {
	filter = filter.Normalize()
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, e.fail("list", uuid.Nil, errInvalidf("unknown status %q", filter.Status))
	}
	if !filter.Order.Valid() {
		return nil, e.fail("list", uuid.Nil, errInvalidf("unknown order %q", filter.Order))
	}
	items, total, err := e.s.repository.ListItems(ctx, e.desc.Kind, filter)
	if err != nil {
		return nil, e.fail("list", uuid.Nil, err)
	}
	return &ItemPage{
		Items:   items,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	}, nil
}

// ListPublished lists published items by creation time, newest first.
func (e *engine) ListPublished(ctx context.Context, page, perPage int) (*ItemPage, error) {
	return e.List(ctx, ListFilter{
		Status:  StatusPublished,
		Order:   OrderNewest,
		Page:    page,
		PerPage: perPage,
	})
}

const (
	DefaultRelatedLimit = 5
	MaxRelatedLimit     = 20
)

func (e *engine) Related(ctx context.Context, id uuid.UUID, limit int) ([]*Item, error) {
	switch {
	case limit <= 0:
		limit = DefaultRelatedLimit
	case limit > MaxRelatedLimit:
		limit = MaxRelatedLimit
	}
	if _, err := e.s.repository.GetItem(ctx, e.desc.Kind, id); err != nil {
		return nil, e.fail("related", id, err)
	}
	items, err := e.s.repository.RelatedItems(ctx, e.desc.Kind, id, limit)
	if err != nil {
		return nil, e.fail("related", id, err)
	}
	return items, nil
}

// dedupeIDs drops repeated ids, keeping first-seen order. The result is
// never nil.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
