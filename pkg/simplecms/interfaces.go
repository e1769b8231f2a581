package simplecms

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Lifecycle is the set of operations one content kind exposes. Pages and
// articles share the same contract.
type Lifecycle interface {
	Kind() Kind

	Create(ctx context.Context, in CreateInput, authorID uuid.UUID) (*Item, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput, editorID uuid.UUID) (*Item, error)
	Publish(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Item, error)
	Trash(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Item, error)
	Restore(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*Item, error)
	ListRevisions(ctx context.Context, id uuid.UUID) ([]*Revision, error)
	RestoreRevision(ctx context.Context, id, revisionID uuid.UUID, editorID uuid.UUID) (*Item, error)

	Get(ctx context.Context, id uuid.UUID) (*Item, error)
	// GetBySlug returns a published item for public display.
	GetBySlug(ctx context.Context, slug string) (*Item, error)
	List(ctx context.Context, filter ListFilter) (*ItemPage, error)
	// ListPublished returns published items, newest first, for public listing.
	ListPublished(ctx context.Context, page, perPage int) (*ItemPage, error)
	// Related returns published items sharing a category with id, newest first.
	Related(ctx context.Context, id uuid.UUID, limit int) ([]*Item, error)
	IsSlugAvailable(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
}

// Service is the entry point of the library.
type Service interface {
	Pages() Lifecycle
	Articles() Lifecycle
	Lifecycle(kind Kind) (Lifecycle, error)

	// Trash
	ListTrash(ctx context.Context) (*TrashListing, error)
	EmptyTrash(ctx context.Context) (*TrashPurge, error)

	// Categories
	CreateCategory(ctx context.Context, in CategoryInput, actorID uuid.UUID) (*Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput, actorID uuid.UUID) (*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)

	// Media
	UploadMedia(ctx context.Context, in UploadMediaInput, uploaderID uuid.UUID) (*Media, error)
	GetMedia(ctx context.Context, id uuid.UUID) (*Media, error)
	ListMedia(ctx context.Context, page, perPage int) ([]*Media, int64, error)
	DownloadMedia(ctx context.Context, id uuid.UUID) (io.ReadCloser, *Media, error)
	MediaDownloadURL(ctx context.Context, id uuid.UUID) (string, error)
	DeleteMedia(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error

	// Apps
	CreateApp(ctx context.Context, in AppInput, actorID uuid.UUID) (*App, error)
	UpdateApp(ctx context.Context, id uuid.UUID, in AppUpdate, actorID uuid.UUID) (*App, error)
	DeleteApp(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
	GetApp(ctx context.Context, id uuid.UUID) (*App, error)
	ListApps(ctx context.Context, page, perPage int) (*AppPage, error)
	ReorderApps(ctx context.Context, ids []uuid.UUID, actorID uuid.UUID) error

	// Menus
	GetMenu(ctx context.Context, name string) (*MenuTree, error)
	ReplaceMenu(ctx context.Context, in MenuInput, actorID uuid.UUID) (*MenuTree, error)

	// Audit
	ListAuditLog(ctx context.Context, page, perPage int) (*AuditPage, error)
}

// ItemRepository persists items and their revisions. Implementations must
// enforce slug uniqueness per kind and return ErrConflict on violation,
// ErrNotFound for missing rows and ErrInvalidState when a Transition's
// RequireFrom does not match.
type ItemRepository interface {
	// CreateItem inserts the item, its category links and the seed revision atomically.
	CreateItem(ctx context.Context, item *Item, rev *Revision) error
	GetItem(ctx context.Context, kind Kind, id uuid.UUID) (*Item, error)
	GetItemBySlug(ctx context.Context, kind Kind, slug string) (*Item, error)
	// SlugOwner returns the id holding slug, or uuid.Nil when it is free.
	SlugOwner(ctx context.Context, kind Kind, slug string) (uuid.UUID, error)
	// SaveItem overwrites the item row and category links and appends rev atomically.
	SaveItem(ctx context.Context, item *Item, rev *Revision) error
	TransitionItem(ctx context.Context, kind Kind, id uuid.UUID, t Transition) (*Item, error)
	ListItems(ctx context.Context, kind Kind, filter ListFilter) ([]*Item, int64, error)
	ListTrashed(ctx context.Context, kind Kind) ([]*Item, error)
	// RelatedItems returns up to limit published items of kind that share a
	// category with itemID, excluding itemID, newest first.
	RelatedItems(ctx context.Context, kind Kind, itemID uuid.UUID, limit int) ([]*Item, error)

	// ListRevisions returns revisions newest first.
	ListRevisions(ctx context.Context, kind Kind, itemID uuid.UUID) ([]*Revision, error)
	GetRevision(ctx context.Context, kind Kind, itemID, revisionID uuid.UUID) (*Revision, error)

	// PublishDue promotes scheduled items whose publish_at is not after now.
	PublishDue(ctx context.Context, kind Kind, now time.Time) (int64, error)
	// PurgeTrashed permanently erases trashed items with trashed_at before cutoff.
	PurgeTrashed(ctx context.Context, kind Kind, cutoff time.Time) (int64, error)
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]*Category, error)
	CategorySlugOwner(ctx context.Context, slug string) (uuid.UUID, error)
}

// MediaRepository persists media metadata.
type MediaRepository interface {
	CreateMedia(ctx context.Context, m *Media) error
	GetMedia(ctx context.Context, id uuid.UUID) (*Media, error)
	ListMedia(ctx context.Context, limit, offset int) ([]*Media, int64, error)
	DeleteMedia(ctx context.Context, id uuid.UUID) error
}

// AppRepository persists launcher apps.
type AppRepository interface {
	// CreateApp inserts the app at the end of the launcher, setting SortOrder.
	CreateApp(ctx context.Context, app *App) error
	GetApp(ctx context.Context, id uuid.UUID) (*App, error)
	UpdateApp(ctx context.Context, app *App) error
	DeleteApp(ctx context.Context, id uuid.UUID) error
	// ListApps returns apps by SortOrder with the total count.
	ListApps(ctx context.Context, limit, offset int) ([]*App, int64, error)
	// ReorderApps sets each app's SortOrder to its index in ids. Unknown ids
	// are skipped.
	ReorderApps(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// MenuRepository persists named menus.
type MenuRepository interface {
	GetMenu(ctx context.Context, name string) (*MenuTree, error)
	// ReplaceMenu swaps the menu's items for items in one transaction,
	// creating the menu when it does not exist.
	ReplaceMenu(ctx context.Context, name string, items []*MenuItem) (*MenuTree, error)
}

// Repository is the full storage contract.
type Repository interface {
	ItemRepository
	CategoryRepository
	MediaRepository
	AppRepository
	MenuRepository
}

// AuditSink receives audit entries. Failures never block the operation that
// produced the entry.
type AuditSink interface {
	Record(ctx context.Context, entry *AuditEntry) error
}

// AuditReader pages through recorded audit entries, newest first.
type AuditReader interface {
	ListAudit(ctx context.Context, limit, offset int) ([]*AuditEntry, int64, error)
}

// SessionStore keeps admin sessions. The scheduler only uses DeleteExpired.
type SessionStore interface {
	Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, *Session, error)
	Lookup(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// BlobStore defines the interface for media storage backends
type BlobStore interface {
	// Upload stores the reader's bytes under objectKey
	Upload(ctx context.Context, objectKey string, reader io.Reader, mimeType string) error

	// Download opens the object for reading
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes the object, returning ErrObjectNotFound if it is absent
	Delete(ctx context.Context, objectKey string) error

	// GetDownloadURL returns a URL for downloading the object
	GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error)
}

// Locker provides a best-effort distributed mutex so that only one replica
// runs a scheduler tick at a time.
type Locker interface {
	// TryLock acquires key for ttl. ok is false when another holder owns it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// Sanitizer cleans user supplied rich text before it is stored.
type Sanitizer interface {
	Sanitize(html string) string
}

// Clock abstracts time for the engine and scheduler.
type Clock interface {
	Now() time.Time
}
