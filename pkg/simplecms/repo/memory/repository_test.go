package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

var base = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func newItem(kind simplecms.Kind, slug string, status simplecms.Status) (*simplecms.Item, *simplecms.Revision) {
	item := &simplecms.Item{
		ID:          uuid.New(),
		Kind:        kind,
		Title:       slug,
		Slug:        slug,
		Status:      status,
		CategoryIDs: []uuid.UUID{},
		CreatedAt:   base,
		UpdatedAt:   base,
	}
	rev := &simplecms.Revision{ID: uuid.New(), ItemID: item.ID, Kind: kind, Title: item.Title, CreatedAt: base}
	return item, rev
}

func TestRepository_SlugUniquenessPerKind(t *testing.T) {
	ctx := context.Background()
	repo := New()

	page, rev := newItem(simplecms.KindPage, "about", simplecms.StatusDraft)
	require.NoError(t, repo.CreateItem(ctx, page, rev))

	dup, rev := newItem(simplecms.KindPage, "about", simplecms.StatusDraft)
	assert.ErrorIs(t, repo.CreateItem(ctx, dup, rev), simplecms.ErrConflict)

	article, rev := newItem(simplecms.KindArticle, "about", simplecms.StatusDraft)
	require.NoError(t, repo.CreateItem(ctx, article, rev))

	owner, err := repo.SlugOwner(ctx, simplecms.KindPage, "about")
	require.NoError(t, err)
	assert.Equal(t, page.ID, owner)

	owner, err = repo.SlugOwner(ctx, simplecms.KindPage, "contact")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, owner)
}

func TestRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := New()

	item, rev := newItem(simplecms.KindPage, "copy", simplecms.StatusDraft)
	require.NoError(t, repo.CreateItem(ctx, item, rev))
	item.Title = "mutated by caller"

	got, err := repo.GetItem(ctx, simplecms.KindPage, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "copy", got.Title)

	got.Title = "mutated again"
	again, err := repo.GetItem(ctx, simplecms.KindPage, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "copy", again.Title)
}

func TestRepository_SaveItem(t *testing.T) {
	ctx := context.Background()
	repo := New()

	a, rev := newItem(simplecms.KindPage, "a", simplecms.StatusDraft)
	require.NoError(t, repo.CreateItem(ctx, a, rev))
	b, rev := newItem(simplecms.KindPage, "b", simplecms.StatusDraft)
	require.NoError(t, repo.CreateItem(ctx, b, rev))

	b.Slug = "a"
	assert.ErrorIs(t, repo.SaveItem(ctx, b, nil), simplecms.ErrConflict)

	b.Slug = "c"
	next := &simplecms.Revision{ID: uuid.New(), ItemID: b.ID, Kind: simplecms.KindPage, Title: "b v2", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, repo.SaveItem(ctx, b, next))

	_, err := repo.GetItemBySlug(ctx, simplecms.KindPage, "b")
	assert.ErrorIs(t, err, simplecms.ErrNotFound)
	got, err := repo.GetItemBySlug(ctx, simplecms.KindPage, "c")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	revs, err := repo.ListRevisions(ctx, simplecms.KindPage, b.ID)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, next.ID, revs[0].ID)

	missing, _ := newItem(simplecms.KindPage, "missing", simplecms.StatusDraft)
	assert.ErrorIs(t, repo.SaveItem(ctx, missing, nil), simplecms.ErrNotFound)
}

func TestRepository_TransitionItem(t *testing.T) {
	ctx := context.Background()
	repo := New()

	item, rev := newItem(simplecms.KindArticle, "t", simplecms.StatusPublished)
	require.NoError(t, repo.CreateItem(ctx, item, rev))

	_, err := repo.TransitionItem(ctx, simplecms.KindArticle, item.ID, simplecms.Transition{
		To:          simplecms.StatusDraft,
		RequireFrom: simplecms.StatusTrashed,
		UpdatedAt:   base,
	})
	assert.ErrorIs(t, err, simplecms.ErrInvalidState)

	trashedAt := base.Add(time.Hour)
	got, err := repo.TransitionItem(ctx, simplecms.KindArticle, item.ID, simplecms.Transition{
		To:        simplecms.StatusTrashed,
		TrashedAt: &trashedAt,
		UpdatedAt: trashedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, simplecms.StatusTrashed, got.Status)
	assert.Equal(t, trashedAt, *got.TrashedAt)

	got, err = repo.TransitionItem(ctx, simplecms.KindArticle, item.ID, simplecms.Transition{
		To:          simplecms.StatusDraft,
		RequireFrom: simplecms.StatusTrashed,
		UpdatedAt:   trashedAt,
	})
	require.NoError(t, err)
	assert.Nil(t, got.TrashedAt)

	_, err = repo.TransitionItem(ctx, simplecms.KindPage, item.ID, simplecms.Transition{To: simplecms.StatusPublished})
	assert.ErrorIs(t, err, simplecms.ErrNotFound)
}

func TestRepository_PublishDueAndPurge(t *testing.T) {
	ctx := context.Background()
	repo := New()

	due, rev := newItem(simplecms.KindPage, "due", simplecms.StatusScheduled)
	at := base.Add(-time.Minute)
	due.PublishAt = &at
	require.NoError(t, repo.CreateItem(ctx, due, rev))

	onTime, rev := newItem(simplecms.KindPage, "on-time", simplecms.StatusScheduled)
	exact := base
	onTime.PublishAt = &exact
	require.NoError(t, repo.CreateItem(ctx, onTime, rev))

	future, rev := newItem(simplecms.KindPage, "future", simplecms.StatusScheduled)
	later := base.Add(time.Minute)
	future.PublishAt = &later
	require.NoError(t, repo.CreateItem(ctx, future, rev))

	n, err := repo.PublishDue(ctx, simplecms.KindPage, base)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	old, rev := newItem(simplecms.KindPage, "old", simplecms.StatusTrashed)
	trashed := base.Add(-31 * 24 * time.Hour)
	old.TrashedAt = &trashed
	require.NoError(t, repo.CreateItem(ctx, old, rev))

	n, err = repo.PurgeTrashed(ctx, simplecms.KindPage, simplecms.RetentionCutoff(base))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	revs, err := repo.ListRevisions(ctx, simplecms.KindPage, old.ID)
	require.NoError(t, err)
	assert.Empty(t, revs)

	owner, err := repo.SlugOwner(ctx, simplecms.KindPage, "old")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, owner)
}

func TestRepository_ListMedia(t *testing.T) {
	ctx := context.Background()
	repo := New()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateMedia(ctx, &simplecms.Media{
			ID:        uuid.New(),
			Filename:  "f",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	items, total, err := repo.ListMedia(ctx, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 2)
	assert.True(t, items[0].CreatedAt.After(items[1].CreatedAt))

	items, _, err = repo.ListMedia(ctx, 2, 4)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRepository_UpdatedAtOnlyMovesForward(t *testing.T) {
	ctx := context.Background()
	repo := New()
	earlier := base.Add(-time.Hour)

	item, rev := newItem(simplecms.KindPage, "skewed", simplecms.StatusDraft)
	require.NoError(t, repo.CreateItem(ctx, item, rev))

	got, err := repo.TransitionItem(ctx, simplecms.KindPage, item.ID, simplecms.Transition{
		To: simplecms.StatusPublished, UpdatedAt: earlier,
	})
	require.NoError(t, err)
	assert.Equal(t, base, got.UpdatedAt)

	got, err = repo.TransitionItem(ctx, simplecms.KindPage, item.ID, simplecms.Transition{
		To: simplecms.StatusDraft, UpdatedAt: base.Add(time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Minute), got.UpdatedAt, "later times still apply")

	scheduled, rev := newItem(simplecms.KindPage, "skewed-scheduled", simplecms.StatusScheduled)
	due := earlier.Add(-time.Hour)
	scheduled.PublishAt = &due
	require.NoError(t, repo.CreateItem(ctx, scheduled, rev))

	n, err := repo.PublishDue(ctx, simplecms.KindPage, earlier)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	got, err = repo.GetItem(ctx, simplecms.KindPage, scheduled.ID)
	require.NoError(t, err)
	assert.Equal(t, base, got.UpdatedAt)
}

func TestRepository_NewestOrderAndRelated(t *testing.T) {
	ctx := context.Background()
	repo := New()
	news, other := uuid.New(), uuid.New()

	create := func(slug string, status simplecms.Status, age time.Duration, categories ...uuid.UUID) *simplecms.Item {
		item, rev := newItem(simplecms.KindArticle, slug, status)
		item.CreatedAt = base.Add(-age)
		item.UpdatedAt = base.Add(age)
		item.CategoryIDs = categories
		require.NoError(t, repo.CreateItem(ctx, item, rev))
		return item
	}
	source := create("source", simplecms.StatusPublished, 0, news)
	create("older", simplecms.StatusPublished, 2*time.Hour, news)
	create("newer", simplecms.StatusPublished, time.Hour, other, news)
	create("draft", simplecms.StatusDraft, time.Minute, news)
	create("unrelated", simplecms.StatusPublished, time.Minute, other)

	items, total, err := repo.ListItems(ctx, simplecms.KindArticle, simplecms.ListFilter{
		Status: simplecms.StatusPublished, Order: simplecms.OrderNewest,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Equal(t, []string{"source", "unrelated", "newer", "older"}, slugs(items))

	items, _, err = repo.ListItems(ctx, simplecms.KindArticle, simplecms.ListFilter{Status: simplecms.StatusPublished})
	require.NoError(t, err)
	assert.Equal(t, []string{"older", "newer", "unrelated", "source"}, slugs(items), "default order is updated_at")

	related, err := repo.RelatedItems(ctx, simplecms.KindArticle, source.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"newer", "older"}, slugs(related))

	related, err = repo.RelatedItems(ctx, simplecms.KindArticle, source.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"newer"}, slugs(related))

	related, err = repo.RelatedItems(ctx, simplecms.KindPage, source.ID, 5)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func slugs(items []*simplecms.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Slug
	}
	return out
}

func TestRepository_Apps(t *testing.T) {
	ctx := context.Background()
	repo := New()

	page, rev := newItem(simplecms.KindPage, "landing", simplecms.StatusTrashed)
	trashedAt := base.Add(-40 * 24 * time.Hour)
	page.TrashedAt = &trashedAt
	require.NoError(t, repo.CreateItem(ctx, page, rev))
	icon := &simplecms.Media{ID: uuid.New(), Filename: "i.png", CreatedAt: base}
	require.NoError(t, repo.CreateMedia(ctx, icon))

	var apps []*simplecms.App
	for _, name := range []string{"Mail", "Chat", "Docs"} {
		app := &simplecms.App{ID: uuid.New(), Name: name, CreatedAt: base, UpdatedAt: base}
		if name == "Docs" {
			app.PageID = &page.ID
			app.IconID = &icon.ID
		}
		require.NoError(t, repo.CreateApp(ctx, app))
		apps = append(apps, app)
	}
	assert.Equal(t, []int{0, 1, 2}, []int{apps[0].SortOrder, apps[1].SortOrder, apps[2].SortOrder})

	require.NoError(t, repo.ReorderApps(ctx, []uuid.UUID{apps[2].ID, uuid.New(), apps[0].ID}, base.Add(time.Minute)))
	listed, total, err := repo.ListApps(ctx, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, listed, 3)
	assert.Equal(t, "Docs", listed[0].Name)
	assert.Equal(t, "Chat", listed[1].Name)
	assert.Equal(t, "Mail", listed[2].Name)
	assert.Equal(t, base.Add(time.Minute), listed[0].UpdatedAt)
	assert.Equal(t, base, listed[1].UpdatedAt, "apps missing from the list are untouched")

	listed, _, err = repo.ListApps(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Chat", listed[0].Name)

	_, err = repo.PurgeTrashed(ctx, simplecms.KindPage, base)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteMedia(ctx, icon.ID))
	docs, err := repo.GetApp(ctx, apps[2].ID)
	require.NoError(t, err)
	assert.Nil(t, docs.PageID, "purging the page clears the link")
	assert.Nil(t, docs.IconID, "deleting the icon clears it")

	docs.Name = "Handbook"
	docs.SortOrder = 99
	require.NoError(t, repo.UpdateApp(ctx, docs))
	docs, err = repo.GetApp(ctx, docs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Handbook", docs.Name)
	assert.Equal(t, 0, docs.SortOrder, "update does not move the app")

	require.NoError(t, repo.DeleteApp(ctx, docs.ID))
	assert.ErrorIs(t, repo.DeleteApp(ctx, docs.ID), simplecms.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateApp(ctx, docs), simplecms.ErrNotFound)
}

func TestRepository_Menus(t *testing.T) {
	ctx := context.Background()
	repo := New()

	_, err := repo.GetMenu(ctx, "main")
	assert.ErrorIs(t, err, simplecms.ErrNotFound)

	home := &simplecms.MenuItem{ID: uuid.New(), Label: "Home", LinkType: "url", LinkTarget: "/", SortOrder: 1}
	about := &simplecms.MenuItem{ID: uuid.New(), Label: "About", LinkType: "page", LinkTarget: "about", ParentID: &home.ID}
	tree, err := repo.ReplaceMenu(ctx, "main", []*simplecms.MenuItem{home, about})
	require.NoError(t, err)
	require.Len(t, tree.Items, 2)
	assert.Equal(t, "About", tree.Items[0].Label)
	assert.Equal(t, tree.Menu.ID, tree.Items[1].MenuID)

	tree.Items[0].Label = "mutated by caller"
	got, err := repo.GetMenu(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "About", got.Items[0].Label)

	replaced, err := repo.ReplaceMenu(ctx, "main", []*simplecms.MenuItem{home})
	require.NoError(t, err)
	assert.Equal(t, tree.Menu.ID, replaced.Menu.ID)
	assert.Len(t, replaced.Items, 1)

	_, err = repo.ReplaceMenu(ctx, "footer", []*simplecms.MenuItem{home})
	assert.ErrorIs(t, err, simplecms.ErrConflict)
	_, err = repo.GetMenu(ctx, "footer")
	assert.ErrorIs(t, err, simplecms.ErrNotFound)

	empty, err := repo.ReplaceMenu(ctx, "footer", nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestAuditLog_ListAudit(t *testing.T) {
	ctx := context.Background()
	log := NewAuditLog()

	for i, action := range []string{"create", "update", "publish"} {
		require.NoError(t, log.Record(ctx, &simplecms.AuditEntry{
			ID: uuid.New(), Action: action, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, total, err := log.ListAudit(ctx, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, entries, 2)
	assert.Equal(t, "publish", entries[0].Action)
	assert.Equal(t, "update", entries[1].Action)

	entries, _, err = log.ListAudit(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "create", entries[0].Action)

	entries, _, err = log.ListAudit(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
