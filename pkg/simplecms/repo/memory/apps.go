package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

func cloneApp(a *simplecms.App) *simplecms.App {
	c := *a
	if a.IconID != nil {
		id := *a.IconID
		c.IconID = &id
	}
	if a.PageID != nil {
		id := *a.PageID
		c.PageID = &id
	}
	return &c
}

// unlinkPage clears app links to a purged page. Callers hold the write lock.
func (r *Repository) unlinkPage(kind simplecms.Kind, id uuid.UUID) {
	if kind != simplecms.KindPage {
		return
	}
	for _, app := range r.apps {
		if app.PageID != nil && *app.PageID == id {
			app.PageID = nil
		}
	}
}

func (r *Repository) CreateApp(ctx context.Context, app *simplecms.App) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := 0
	for _, a := range r.apps {
		if a.SortOrder >= next {
			next = a.SortOrder + 1
		}
	}
	app.SortOrder = next
	r.apps[app.ID] = cloneApp(app)
	return nil
}

func (r *Repository) GetApp(ctx context.Context, id uuid.UUID) (*simplecms.App, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	app, ok := r.apps[id]
	if !ok {
		return nil, simplecms.ErrNotFound
	}
	return cloneApp(app), nil
}

// UpdateApp overwrites the editable fields. SortOrder and CreatedAt are
// owned by the store.
func (r *Repository) UpdateApp(ctx context.Context, app *simplecms.App) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.apps[app.ID]
	if !ok {
		return simplecms.ErrNotFound
	}
	updated := cloneApp(app)
	updated.SortOrder = existing.SortOrder
	updated.CreatedAt = existing.CreatedAt
	r.apps[app.ID] = updated
	return nil
}

func (r *Repository) DeleteApp(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.apps[id]; !ok {
		return simplecms.ErrNotFound
	}
	delete(r.apps, id)
	return nil
}

func (r *Repository) ListApps(ctx context.Context, limit, offset int) ([]*simplecms.App, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*simplecms.App, 0, len(r.apps))
	for _, a := range r.apps {
		all = append(all, cloneApp(a))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].SortOrder == all[j].SortOrder {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].SortOrder < all[j].SortOrder
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []*simplecms.App{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *Repository) ReorderApps(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, id := range ids {
		app, ok := r.apps[id]
		if !ok {
			continue
		}
		app.SortOrder = i
		if at.After(app.UpdatedAt) {
			app.UpdatedAt = at
		}
	}
	return nil
}
