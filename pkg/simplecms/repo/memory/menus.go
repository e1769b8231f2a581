package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

func cloneMenu(m *simplecms.MenuTree) *simplecms.MenuTree {
	c := &simplecms.MenuTree{Menu: m.Menu, Items: make([]*simplecms.MenuItem, len(m.Items))}
	for i, item := range m.Items {
		itemCopy := *item
		if item.ParentID != nil {
			id := *item.ParentID
			itemCopy.ParentID = &id
		}
		c.Items[i] = &itemCopy
	}
	return c
}

func (r *Repository) GetMenu(ctx context.Context, name string) (*simplecms.MenuTree, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.menus[name]
	if !ok {
		return nil, simplecms.ErrNotFound
	}
	return cloneMenu(m), nil
}

// ReplaceMenu rejects item ids already used by another menu, matching the
// primary key on menu_items.
func (r *Repository) ReplaceMenu(ctx context.Context, name string, items []*simplecms.MenuItem) (*simplecms.MenuTree, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for other, m := range r.menus {
		if other == name {
			continue
		}
		for _, existing := range m.Items {
			for _, item := range items {
				if item.ID == existing.ID {
					return nil, fmt.Errorf("%w: menu item %s belongs to menu %q", simplecms.ErrConflict, item.ID, other)
				}
			}
		}
	}

	menu := simplecms.Menu{ID: uuid.New(), Name: name}
	if current, ok := r.menus[name]; ok {
		menu = current.Menu
	}
	tree := &simplecms.MenuTree{Menu: menu, Items: make([]*simplecms.MenuItem, len(items))}
	for i, item := range items {
		itemCopy := *item
		itemCopy.MenuID = menu.ID
		tree.Items[i] = &itemCopy
	}
	sort.SliceStable(tree.Items, func(i, j int) bool {
		return tree.Items[i].SortOrder < tree.Items[j].SortOrder
	})
	r.menus[name] = tree
	return cloneMenu(tree), nil
}
