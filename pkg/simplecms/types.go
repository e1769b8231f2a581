package simplecms

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies a content-type collection. Slugs are unique within a Kind.
type Kind string

const (
	KindPage    Kind = "page"
	KindArticle Kind = "article"
)

// Kinds lists every content kind handled by the lifecycle engine.
var Kinds = []Kind{KindPage, KindArticle}

// Status is the lifecycle state of an Item.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusTrashed   Status = "trashed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished, StatusTrashed:
		return true
	}
	return false
}

// Item is a page or an article. Articles additionally carry ShortText, a
// derived ReadingTimeMinutes and an optional cover image.
type Item struct {
	ID                 uuid.UUID   `json:"id"`
	Kind               Kind        `json:"kind"`
	Title              string      `json:"title"`
	Slug               string      `json:"slug"`
	Content            string      `json:"content"`
	ShortText          string      `json:"short_text,omitempty"`
	Status             Status      `json:"status"`
	PublishAt          *time.Time  `json:"publish_at,omitempty"`
	TrashedAt          *time.Time  `json:"trashed_at,omitempty"`
	AuthorID           uuid.UUID   `json:"author_id"`
	CoverImageID       *uuid.UUID  `json:"cover_image_id,omitempty"`
	ReadingTimeMinutes int         `json:"reading_time_minutes,omitempty"`
	CategoryIDs        []uuid.UUID `json:"category_ids"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	c := *i
	if i.PublishAt != nil {
		t := *i.PublishAt
		c.PublishAt = &t
	}
	if i.TrashedAt != nil {
		t := *i.TrashedAt
		c.TrashedAt = &t
	}
	if i.CoverImageID != nil {
		id := *i.CoverImageID
		c.CoverImageID = &id
	}
	c.CategoryIDs = make([]uuid.UUID, len(i.CategoryIDs))
	copy(c.CategoryIDs, i.CategoryIDs)
	return &c
}

// Revision is an immutable snapshot of an item's editable fields.
type Revision struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ShortText string    `json:"short_text,omitempty"`
	AuthorID  uuid.UUID `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Transition describes a status change applied atomically by the repository.
// When RequireFrom is set the change only applies if the current status
// matches, otherwise the repository returns ErrInvalidState. TrashedAt
// replaces the stored value (nil clears it).
type Transition struct {
	To          Status
	RequireFrom Status
	TrashedAt   *time.Time
	UpdatedAt   time.Time
}

// ListOrder picks the sort key for List.
type ListOrder string

const (
	// OrderRecentlyUpdated sorts by updated_at, newest first. It is the default.
	OrderRecentlyUpdated ListOrder = ""
	// OrderNewest sorts by created_at, newest first.
	OrderNewest ListOrder = "newest"
)

// Valid reports whether o is a known ordering.
func (o ListOrder) Valid() bool {
	return o == OrderRecentlyUpdated || o == OrderNewest
}

// ListFilter selects items for List. An empty Status lists every item that
// is not trashed.
type ListFilter struct {
	Status     Status
	Query      string
	CategoryID *uuid.UUID
	Order      ListOrder
	Page       int
	PerPage    int
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Normalize clamps pagination to sane bounds.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.PerPage == 0:
		f.PerPage = DefaultPerPage
	case f.PerPage < 1:
		f.PerPage = 1
	case f.PerPage > MaxPerPage:
		f.PerPage = MaxPerPage
	}
	return f
}

// Offset returns the number of rows to skip for the normalized page.
func (f ListFilter) Offset() int {
	n := f.Normalize()
	return (n.Page - 1) * n.PerPage
}

// ItemPage is one page of List results.
type ItemPage struct {
	Items   []*Item `json:"items"`
	Total   int64   `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
}

// TrashPurge reports how many items an empty-trash pass erased.
type TrashPurge struct {
	Pages    int64 `json:"pages_deleted"`
	Articles int64 `json:"articles_deleted"`
}

// TrashListing holds trashed items, most recently trashed first.
type TrashListing struct {
	Pages    []*Item `json:"pages"`
	Articles []*Item `json:"articles"`
}

// Category is a flat taxonomy entry attachable to pages and articles.
type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// Media is an uploaded file. The bytes live in a BlobStore under ObjectKey.
type Media struct {
	ID               uuid.UUID `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         string    `json:"mime_type"`
	SizeBytes        int64     `json:"size_bytes"`
	AltText          string    `json:"alt_text"`
	ObjectKey        string    `json:"object_key"`
	UploadedBy       uuid.UUID `json:"uploaded_by"`
	CreatedAt        time.Time `json:"created_at"`
}

// App is an entry in the ordered app launcher. It links out to URL or to
// an internal page.
type App struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IconID      *uuid.UUID `json:"icon_id,omitempty"`
	URL         string     `json:"url,omitempty"`
	PageID      *uuid.UUID `json:"page_id,omitempty"`
	SortOrder   int        `json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AppPage is one page of apps in launcher order.
type AppPage struct {
	Items   []*App `json:"items"`
	Total   int64  `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// Menu is a named navigation menu such as "main" or "footer".
type Menu struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// MenuItem is one link in a menu. ParentID nests it under another item of
// the same menu.
type MenuItem struct {
	ID         uuid.UUID  `json:"id"`
	MenuID     uuid.UUID  `json:"menu_id"`
	Label      string     `json:"label"`
	LinkType   string     `json:"link_type"`
	LinkTarget string     `json:"link_target"`
	ParentID   *uuid.UUID `json:"parent_id,omitempty"`
	SortOrder  int        `json:"sort_order"`
}

// MenuTree is a menu with its items in sort order.
type MenuTree struct {
	Menu  Menu        `json:"menu"`
	Items []*MenuItem `json:"items"`
}

// AuditEntry records who did what to which entity.
type AuditEntry struct {
	ID         uuid.UUID              `json:"id"`
	ActorID    uuid.UUID              `json:"actor_id"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   uuid.UUID              `json:"entity_id"`
	Details    map[string]interface{} `json:"details,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// AuditPage is one page of the audit log, newest first.
type AuditPage struct {
	Entries []*AuditEntry `json:"entries"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

// Session is an authenticated admin session. Only the SHA-256 hash of the
// bearer token is stored.
type Session struct {
	TokenHash string    `json:"-"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultSessionTTL is the lifetime of a newly created session.
const DefaultSessionTTL = 7 * 24 * time.Hour
