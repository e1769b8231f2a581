package simplecms

import (
	"context"

	"github.com/google/uuid"
)

// GetMenu returns the named menu with its items in sort order.
func (s *service) GetMenu(ctx context.Context, name string) (*MenuTree, error) {
	menu, err := s.repository.GetMenu(ctx, name)
	if err != nil {
		return nil, s.fail("menu", "get", uuid.Nil, err)
	}
	return menu, nil
}

// ReplaceMenu swaps the whole item set of a menu, creating the menu on first
// write. Submitted item ids are kept so clients can track items across saves.
func (s *service) ReplaceMenu(ctx context.Context, in MenuInput, actorID uuid.UUID) (*MenuTree, error) {
	if err := in.Validate(); err != nil {
		return nil, s.fail("menu", "replace", uuid.Nil, invalidInput(err))
	}
	items, err := buildMenuItems(in.Items)
	if err != nil {
		return nil, s.fail("menu", "replace", uuid.Nil, err)
	}

	menu, err := s.repository.ReplaceMenu(ctx, in.Name, items)
	if err != nil {
		return nil, s.fail("menu", "replace", uuid.Nil, err)
	}
	s.record(ctx, actorID, "update", "menu", menu.Menu.ID, map[string]interface{}{
		"name":  menu.Menu.Name,
		"items": len(menu.Items),
	})
	return menu, nil
}

// buildMenuItems assigns ids and checks that ids are unique and that every
// parent is part of the same submission.
func buildMenuItems(in []MenuItemInput) ([]*MenuItem, error) {
	items := make([]*MenuItem, 0, len(in))
	seen := make(map[uuid.UUID]struct{}, len(in))
	for _, src := range in {
		id := uuid.New()
		if src.ID != nil && *src.ID != uuid.Nil {
			id = *src.ID
		}
		if _, dup := seen[id]; dup {
			return nil, errInvalidf("menu item %s appears twice", id)
		}
		seen[id] = struct{}{}
		items = append(items, &MenuItem{
			ID:         id,
			Label:      src.Label,
			LinkType:   src.LinkType,
			LinkTarget: src.LinkTarget,
			ParentID:   optionalID(src.ParentID),
			SortOrder:  src.SortOrder,
		})
	}
	for _, item := range items {
		if item.ParentID == nil {
			continue
		}
		if *item.ParentID == item.ID {
			return nil, errInvalidf("menu item %s cannot be its own parent", item.ID)
		}
		if _, ok := seen[*item.ParentID]; !ok {
			return nil, errInvalidf("menu item %s has unknown parent %s", item.ID, *item.ParentID)
		}
	}

	parents := make(map[uuid.UUID]uuid.UUID, len(items))
	for _, item := range items {
		if item.ParentID != nil {
			parents[item.ID] = *item.ParentID
		}
	}
	for _, item := range items {
		id, steps := item.ID, 0
		for {
			parent, ok := parents[id]
			if !ok {
				break
			}
			if steps++; steps > len(items) {
				return nil, errInvalidf("menu item %s is part of a parent cycle", item.ID)
			}
			id = parent
		}
	}
	return items, nil
}
