package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Repository implements simplecms.Repository using in-memory storage. A
// single mutex serialises writers, which also makes the slug index behave
// like a unique constraint.
type Repository struct {
	mu            sync.RWMutex
	items         map[simplecms.Kind]map[uuid.UUID]*simplecms.Item
	slugs         map[simplecms.Kind]map[string]uuid.UUID
	revisions     map[uuid.UUID][]*simplecms.Revision // item_id -> oldest first
	categories    map[uuid.UUID]*simplecms.Category
	categorySlugs map[string]uuid.UUID
	media         map[uuid.UUID]*simplecms.Media
	apps          map[uuid.UUID]*simplecms.App
	menus         map[string]*simplecms.MenuTree
}

// New creates a new in-memory repository
func New() *Repository {
	r := &Repository{
		items:         make(map[simplecms.Kind]map[uuid.UUID]*simplecms.Item),
		slugs:         make(map[simplecms.Kind]map[string]uuid.UUID),
		revisions:     make(map[uuid.UUID][]*simplecms.Revision),
		categories:    make(map[uuid.UUID]*simplecms.Category),
		categorySlugs: make(map[string]uuid.UUID),
		media:         make(map[uuid.UUID]*simplecms.Media),
		apps:          make(map[uuid.UUID]*simplecms.App),
		menus:         make(map[string]*simplecms.MenuTree),
	}
	for _, kind := range simplecms.Kinds {
		r.items[kind] = make(map[uuid.UUID]*simplecms.Item)
		r.slugs[kind] = make(map[string]uuid.UUID)
	}
	return r
}

var _ simplecms.Repository = (*Repository)(nil)

func (r *Repository) collection(kind simplecms.Kind) (map[uuid.UUID]*simplecms.Item, map[string]uuid.UUID, error) {
	items, ok := r.items[kind]
	if !ok {
		return nil, nil, fmt.Errorf("unknown content kind %q", kind)
	}
	return items, r.slugs[kind], nil
}

func conflict(kind simplecms.Kind, slug string) error {
	return fmt.Errorf("%w: %s slug %q already exists", simplecms.ErrConflict, kind, slug)
}

// Item operations

func (r *Repository) CreateItem(ctx context.Context, item *simplecms.Item, rev *simplecms.Revision) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, slugs, err := r.collection(item.Kind)
	if err != nil {
		return err
	}
	if _, exists := slugs[item.Slug]; exists {
		return conflict(item.Kind, item.Slug)
	}

	items[item.ID] = item.Clone()
	slugs[item.Slug] = item.ID
	revCopy := *rev
	r.revisions[item.ID] = []*simplecms.Revision{&revCopy}
	return nil
}

func (r *Repository) GetItem(ctx context.Context, kind simplecms.Kind, id uuid.UUID) (*simplecms.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items, _, err := r.collection(kind)
	if err != nil {
		return nil, err
	}
	item, exists := items[id]
	if !exists {
		return nil, simplecms.ErrNotFound
	}
	return item.Clone(), nil
}

func (r *Repository) GetItemBySlug(ctx context.Context, kind simplecms.Kind, slug string) (*simplecms.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items, slugs, err := r.collection(kind)
	if err != nil {
		return nil, err
	}
	id, exists := slugs[slug]
	if !exists {
		return nil, simplecms.ErrNotFound
	}
	return items[id].Clone(), nil
}

func (r *Repository) SlugOwner(ctx context.Context, kind simplecms.Kind, slug string) (uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, slugs, err := r.collection(kind)
	if err != nil {
		return uuid.Nil, err
	}
	return slugs[slug], nil
}

func (r *Repository) SaveItem(ctx context.Context, item *simplecms.Item, rev *simplecms.Revision) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, slugs, err := r.collection(item.Kind)
	if err != nil {
		return err
	}
	existing, exists := items[item.ID]
	if !exists {
		return simplecms.ErrNotFound
	}
	if existing.Slug != item.Slug {
		if owner, taken := slugs[item.Slug]; taken && owner != item.ID {
			return conflict(item.Kind, item.Slug)
		}
		delete(slugs, existing.Slug)
		slugs[item.Slug] = item.ID
	}

	items[item.ID] = item.Clone()
	if rev != nil {
		revCopy := *rev
		r.revisions[item.ID] = append(r.revisions[item.ID], &revCopy)
	}
	return nil
}

func (r *Repository) TransitionItem(ctx context.Context, kind simplecms.Kind, id uuid.UUID, t simplecms.Transition) (*simplecms.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, _, err := r.collection(kind)
	if err != nil {
		return nil, err
	}
	item, exists := items[id]
	if !exists {
		return nil, simplecms.ErrNotFound
	}
	if t.RequireFrom != "" && item.Status != t.RequireFrom {
		return nil, fmt.Errorf("%w: status is %s, expected %s", simplecms.ErrInvalidState, item.Status, t.RequireFrom)
	}

	item.Status = t.To
	item.TrashedAt = nil
	if t.TrashedAt != nil {
		ts := *t.TrashedAt
		item.TrashedAt = &ts
	}
	item.UpdatedAt = latest(item.UpdatedAt, t.UpdatedAt)
	return item.Clone(), nil
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

func matchesFilter(item *simplecms.Item, f simplecms.ListFilter) bool {
	if f.Status == "" {
		if item.Status == simplecms.StatusTrashed {
			return false
		}
	} else if item.Status != f.Status {
		return false
	}
	if f.CategoryID != nil {
		found := false
		for _, id := range item.CategoryIDs {
			if id == *f.CategoryID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		haystack := strings.ToLower(item.Title + " " + item.ShortText + " " + item.Content)
		for _, term := range strings.Fields(q) {
			if !strings.Contains(haystack, term) {
				return false
			}
		}
	}
	return true
}

func (r *Repository) ListItems(ctx context.Context, kind simplecms.Kind, filter simplecms.ListFilter) ([]*simplecms.Item, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items, _, err := r.collection(kind)
	if err != nil {
		return nil, 0, err
	}

	var result []*simplecms.Item
	for _, item := range items {
		if matchesFilter(item, filter) {
			result = append(result, item.Clone())
		}
	}

	sortItems(result, filter.Order)

	total := int64(len(result))
	f := filter.Normalize()
	start := f.Offset()
	if start >= len(result) {
		return []*simplecms.Item{}, total, nil
	}
	end := start + f.PerPage
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

// sortItems orders items newest first by the key order names, breaking
// ties by id.
func sortItems(items []*simplecms.Item, order simplecms.ListOrder) {
	key := func(item *simplecms.Item) time.Time { return item.UpdatedAt }
	if order == simplecms.OrderNewest {
		key = func(item *simplecms.Item) time.Time { return item.CreatedAt }
	}
	sort.Slice(items, func(i, j int) bool {
		ki, kj := key(items[i]), key(items[j])
		if ki.Equal(kj) {
			return items[i].ID.String() < items[j].ID.String()
		}
		return ki.After(kj)
	})
}

func (r *Repository) RelatedItems(ctx context.Context, kind simplecms.Kind, itemID uuid.UUID, limit int) ([]*simplecms.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items, _, err := r.collection(kind)
	if err != nil {
		return nil, err
	}
	source, ok := items[itemID]
	if !ok {
		return []*simplecms.Item{}, nil
	}
	wanted := make(map[uuid.UUID]struct{}, len(source.CategoryIDs))
	for _, id := range source.CategoryIDs {
		wanted[id] = struct{}{}
	}

	result := []*simplecms.Item{}
	for id, item := range items {
		if id == itemID || item.Status != simplecms.StatusPublished {
			continue
		}
		for _, cid := range item.CategoryIDs {
			if _, ok := wanted[cid]; ok {
				result = append(result, item.Clone())
				break
			}
		}
	}
	sortItems(result, simplecms.OrderNewest)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *Repository) ListTrashed(ctx context.Context, kind simplecms.Kind) ([]*simplecms.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items, _, err := r.collection(kind)
	if err != nil {
		return nil, err
	}

	result := []*simplecms.Item{}
	for _, item := range items {
		if item.Status == simplecms.StatusTrashed {
			result = append(result, item.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return trashedAt(result[i]).After(trashedAt(result[j]))
	})
	return result, nil
}

func trashedAt(item *simplecms.Item) time.Time {
	if item.TrashedAt == nil {
		return time.Time{}
	}
	return *item.TrashedAt
}

// Revision operations

func (r *Repository) ListRevisions(ctx context.Context, kind simplecms.Kind, itemID uuid.UUID) ([]*simplecms.Revision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	revs := r.revisions[itemID]
	result := make([]*simplecms.Revision, 0, len(revs))
	for i := len(revs) - 1; i >= 0; i-- {
		if revs[i].Kind != kind {
			continue
		}
		revCopy := *revs[i]
		result = append(result, &revCopy)
	}
	return result, nil
}

func (r *Repository) GetRevision(ctx context.Context, kind simplecms.Kind, itemID, revisionID uuid.UUID) (*simplecms.Revision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rev := range r.revisions[itemID] {
		if rev.ID == revisionID && rev.Kind == kind {
			revCopy := *rev
			return &revCopy, nil
		}
	}
	return nil, simplecms.ErrNotFound
}

// Scheduler operations

func (r *Repository) PublishDue(ctx context.Context, kind simplecms.Kind, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, _, err := r.collection(kind)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, item := range items {
		if item.Status == simplecms.StatusScheduled && item.PublishAt != nil && !item.PublishAt.After(now) {
			item.Status = simplecms.StatusPublished
			item.UpdatedAt = latest(item.UpdatedAt, now)
			n++
		}
	}
	return n, nil
}

func (r *Repository) PurgeTrashed(ctx context.Context, kind simplecms.Kind, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, slugs, err := r.collection(kind)
	if err != nil {
		return 0, err
	}
	var n int64
	for id, item := range items {
		if item.Status == simplecms.StatusTrashed && item.TrashedAt != nil && item.TrashedAt.Before(cutoff) {
			delete(items, id)
			delete(slugs, item.Slug)
			delete(r.revisions, id)
			r.unlinkPage(kind, id)
			n++
		}
	}
	return n, nil
}

// Category operations

func (r *Repository) CreateCategory(ctx context.Context, c *simplecms.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.categorySlugs[c.Slug]; taken {
		return fmt.Errorf("%w: category slug %q already exists", simplecms.ErrConflict, c.Slug)
	}
	cCopy := *c
	r.categories[c.ID] = &cCopy
	r.categorySlugs[c.Slug] = c.ID
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*simplecms.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.categories[id]
	if !exists {
		return nil, simplecms.ErrNotFound
	}
	cCopy := *c
	return &cCopy, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c *simplecms.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.categories[c.ID]
	if !exists {
		return simplecms.ErrNotFound
	}
	if existing.Slug != c.Slug {
		if owner, taken := r.categorySlugs[c.Slug]; taken && owner != c.ID {
			return fmt.Errorf("%w: category slug %q already exists", simplecms.ErrConflict, c.Slug)
		}
		delete(r.categorySlugs, existing.Slug)
		r.categorySlugs[c.Slug] = c.ID
	}
	cCopy := *c
	r.categories[c.ID] = &cCopy
	return nil
}

// DeleteCategory removes the category and unlinks it from every item.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.categories[id]
	if !exists {
		return simplecms.ErrNotFound
	}
	delete(r.categories, id)
	delete(r.categorySlugs, c.Slug)

	for _, items := range r.items {
		for _, item := range items {
			kept := item.CategoryIDs[:0]
			for _, cid := range item.CategoryIDs {
				if cid != id {
					kept = append(kept, cid)
				}
			}
			item.CategoryIDs = kept
		}
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]*simplecms.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*simplecms.Category, 0, len(r.categories))
	for _, c := range r.categories {
		cCopy := *c
		result = append(result, &cCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *Repository) CategorySlugOwner(ctx context.Context, slug string) (uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.categorySlugs[slug], nil
}

// Media operations

func (r *Repository) CreateMedia(ctx context.Context, m *simplecms.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mCopy := *m
	r.media[m.ID] = &mCopy
	return nil
}

func (r *Repository) GetMedia(ctx context.Context, id uuid.UUID) (*simplecms.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.media[id]
	if !exists {
		return nil, simplecms.ErrNotFound
	}
	mCopy := *m
	return &mCopy, nil
}

func (r *Repository) ListMedia(ctx context.Context, limit, offset int) ([]*simplecms.Media, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*simplecms.Media, 0, len(r.media))
	for _, m := range r.media {
		mCopy := *m
		all = append(all, &mCopy)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []*simplecms.Media{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// DeleteMedia removes the media row and clears any cover image or app icon
// pointing at it.
func (r *Repository) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.media[id]; !exists {
		return simplecms.ErrNotFound
	}
	delete(r.media, id)

	for _, item := range r.items[simplecms.KindArticle] {
		if item.CoverImageID != nil && *item.CoverImageID == id {
			item.CoverImageID = nil
		}
	}
	for _, app := range r.apps {
		if app.IconID != nil && *app.IconID == id {
			app.IconID = nil
		}
	}
	return nil
}
