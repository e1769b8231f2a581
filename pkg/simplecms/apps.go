package simplecms

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// checkAppReferences verifies that the icon media and the linked page exist.
// uuid.Nil means "clear" and is not looked up.
func (s *service) checkAppReferences(ctx context.Context, iconID, pageID *uuid.UUID) error {
	if iconID != nil && *iconID != uuid.Nil {
		if _, err := s.repository.GetMedia(ctx, *iconID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return errInvalidf("icon %s does not exist", *iconID)
			}
			return err
		}
	}
	if pageID != nil && *pageID != uuid.Nil {
		if _, err := s.repository.GetItem(ctx, KindPage, *pageID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return errInvalidf("page %s does not exist", *pageID)
			}
			return err
		}
	}
	return nil
}

func optionalID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	v := *id
	return &v
}

// CreateApp appends a new app to the end of the launcher.
func (s *service) CreateApp(ctx context.Context, in AppInput, actorID uuid.UUID) (*App, error) {
	if err := in.Validate(); err != nil {
		return nil, s.fail("app", "create", uuid.Nil, invalidInput(err))
	}
	if err := s.checkAppReferences(ctx, in.IconID, in.PageID); err != nil {
		return nil, s.fail("app", "create", uuid.Nil, err)
	}

	now := s.now()
	app := &App{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: in.Description,
		IconID:      optionalID(in.IconID),
		URL:         in.URL,
		PageID:      optionalID(in.PageID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repository.CreateApp(ctx, app); err != nil {
		return nil, s.fail("app", "create", app.ID, err)
	}
	s.record(ctx, actorID, "create", "app", app.ID, map[string]interface{}{"name": app.Name})
	return app, nil
}

func (s *service) UpdateApp(ctx context.Context, id uuid.UUID, in AppUpdate, actorID uuid.UUID) (*App, error) {
	existing, err := s.repository.GetApp(ctx, id)
	if err != nil {
		return nil, s.fail("app", "update", id, err)
	}
	if err := in.Validate(); err != nil {
		return nil, s.fail("app", "update", id, invalidInput(err))
	}
	if err := s.checkAppReferences(ctx, in.IconID, in.PageID); err != nil {
		return nil, s.fail("app", "update", id, err)
	}

	updated := *existing
	if in.Name != nil {
		updated.Name = *in.Name
	}
	if in.Description != nil {
		updated.Description = *in.Description
	}
	if in.URL != nil {
		updated.URL = *in.URL
	}
	if in.IconID != nil {
		updated.IconID = optionalID(in.IconID)
	}
	if in.PageID != nil {
		updated.PageID = optionalID(in.PageID)
	}
	updated.UpdatedAt = s.now()
	if updated.UpdatedAt.Before(existing.UpdatedAt) {
		updated.UpdatedAt = existing.UpdatedAt
	}

	if err := s.repository.UpdateApp(ctx, &updated); err != nil {
		return nil, s.fail("app", "update", id, err)
	}
	s.record(ctx, actorID, "update", "app", id, map[string]interface{}{"name": updated.Name})
	return &updated, nil
}

func (s *service) DeleteApp(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	app, err := s.repository.GetApp(ctx, id)
	if err != nil {
		return s.fail("app", "delete", id, err)
	}
	if err := s.repository.DeleteApp(ctx, id); err != nil {
		return s.fail("app", "delete", id, err)
	}
	s.record(ctx, actorID, "delete", "app", id, map[string]interface{}{"name": app.Name})
	return nil
}

func (s *service) GetApp(ctx context.Context, id uuid.UUID) (*App, error) {
	app, err := s.repository.GetApp(ctx, id)
	if err != nil {
		return nil, s.fail("app", "get", id, err)
	}
	return app, nil
}

// ListApps returns apps in launcher order.
func (s *service) ListApps(ctx context.Context, page, perPage int) (*AppPage, error) {
	f := ListFilter{Page: page, PerPage: perPage}.Normalize()
	apps, total, err := s.repository.ListApps(ctx, f.PerPage, f.Offset())
	if err != nil {
		return nil, s.fail("app", "list", uuid.Nil, err)
	}
	return &AppPage{Items: apps, Total: total, Page: f.Page, PerPage: f.PerPage}, nil
}

// ReorderApps gives each listed app its position as sort order. Ids that do
// not name an app are ignored.
func (s *service) ReorderApps(ctx context.Context, ids []uuid.UUID, actorID uuid.UUID) error {
	ids = dedupeIDs(ids)
	if err := s.repository.ReorderApps(ctx, ids, s.now()); err != nil {
		return s.fail("app", "reorder", uuid.Nil, err)
	}
	s.record(ctx, actorID, "reorder", "apps", uuid.Nil, map[string]interface{}{"count": len(ids)})
	return nil
}
