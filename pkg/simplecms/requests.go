package simplecms

import (
	"io"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

const (
	maxTitleLength     = 500
	maxSlugLength      = 200
	maxShortTextLength = 1000
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var statusValues = []interface{}{StatusDraft, StatusScheduled, StatusPublished, StatusTrashed}

// CreateInput is the payload for Lifecycle.Create. An empty Slug is derived
// from Title and an empty Status defaults to draft.
type CreateInput struct {
	Title        string      `json:"title"`
	Slug         string      `json:"slug,omitempty"`
	Content      string      `json:"content"`
	ShortText    string      `json:"short_text,omitempty"`
	Status       Status      `json:"status,omitempty"`
	PublishAt    *time.Time  `json:"publish_at,omitempty"`
	CoverImageID *uuid.UUID  `json:"cover_image_id,omitempty"`
	CategoryIDs  []uuid.UUID `json:"category_ids,omitempty"`
}

func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error("title is required"), validation.RuneLength(1, maxTitleLength)),
		validation.Field(&in.Slug, validation.Length(1, maxSlugLength), validation.Match(slugPattern).Error("slug must contain only lowercase letters, digits and single hyphens")),
		validation.Field(&in.ShortText, validation.RuneLength(0, maxShortTextLength)),
		validation.Field(&in.Status, validation.In(statusValues...).Error("unknown status")),
	)
}

// UpdateInput is a partial update: nil fields keep their current value.
// A non-nil CategoryIDs replaces the whole category set (an empty slice
// clears it). A CoverImageID pointing at uuid.Nil clears the cover image.
type UpdateInput struct {
	Title        *string     `json:"title,omitempty"`
	Slug         *string     `json:"slug,omitempty"`
	Content      *string     `json:"content,omitempty"`
	ShortText    *string     `json:"short_text,omitempty"`
	Status       *Status     `json:"status,omitempty"`
	PublishAt    *time.Time  `json:"publish_at,omitempty"`
	CoverImageID *uuid.UUID  `json:"cover_image_id,omitempty"`
	CategoryIDs  []uuid.UUID `json:"category_ids,omitempty"`
}

func (in UpdateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.NilOrNotEmpty.Error("title cannot be empty"), validation.RuneLength(1, maxTitleLength)),
		validation.Field(&in.Slug, validation.NilOrNotEmpty.Error("slug cannot be empty"), validation.Length(1, maxSlugLength), validation.Match(slugPattern).Error("slug must contain only lowercase letters, digits and single hyphens")),
		validation.Field(&in.ShortText, validation.RuneLength(0, maxShortTextLength)),
		validation.Field(&in.Status, validation.NilOrNotEmpty, validation.In(statusValues...).Error("unknown status")),
	)
}

// CategoryInput creates or updates a category. An empty Slug is derived from
// Name.
type CategoryInput struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

func (in CategoryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("name is required"), validation.RuneLength(1, 200)),
		validation.Field(&in.Slug, validation.Length(1, maxSlugLength), validation.Match(slugPattern).Error("slug must contain only lowercase letters, digits and single hyphens")),
	)
}

// UploadMediaInput carries a file to store in the media library.
type UploadMediaInput struct {
	Reader           io.Reader
	OriginalFilename string
	MimeType         string
	AltText          string
}

func (in UploadMediaInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Reader, validation.Required.Error("file body is required")),
		validation.Field(&in.OriginalFilename, validation.Required.Error("filename is required"), validation.RuneLength(1, 255)),
		validation.Field(&in.MimeType, validation.Required.Error("mime type is required")),
		validation.Field(&in.AltText, validation.RuneLength(0, 500)),
	)
}

// AppInput creates an app. New apps are appended to the end of the launcher.
type AppInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	IconID      *uuid.UUID `json:"icon_id,omitempty"`
	URL         string     `json:"url,omitempty"`
	PageID      *uuid.UUID `json:"page_id,omitempty"`
}

func (in AppInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("name is required"), validation.RuneLength(1, 200)),
		validation.Field(&in.Description, validation.RuneLength(0, maxShortTextLength)),
		validation.Field(&in.URL, validation.RuneLength(0, 2000), is.URL),
	)
}

// AppUpdate is a partial update of an app. A nil field keeps its value; an
// IconID or PageID of uuid.Nil clears the reference.
type AppUpdate struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	IconID      *uuid.UUID `json:"icon_id,omitempty"`
	URL         *string    `json:"url,omitempty"`
	PageID      *uuid.UUID `json:"page_id,omitempty"`
}

func (in AppUpdate) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.NilOrNotEmpty.Error("name cannot be empty"), validation.RuneLength(1, 200)),
		validation.Field(&in.Description, validation.RuneLength(0, maxShortTextLength)),
		validation.Field(&in.URL, validation.RuneLength(0, 2000), is.URL),
	)
}

var menuNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// MenuItemInput is one item of a menu replacement. ID keeps an existing
// item's identity across saves; a nil ID gets a fresh one. ParentID must
// name another item of the same submission.
type MenuItemInput struct {
	ID         *uuid.UUID `json:"id,omitempty"`
	Label      string     `json:"label"`
	LinkType   string     `json:"link_type"`
	LinkTarget string     `json:"link_target"`
	ParentID   *uuid.UUID `json:"parent_id,omitempty"`
	SortOrder  int        `json:"sort_order"`
}

func (in MenuItemInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Label, validation.Required.Error("label is required"), validation.RuneLength(1, 200)),
		validation.Field(&in.LinkType, validation.Required.Error("link type is required"), validation.RuneLength(1, 50)),
		validation.Field(&in.LinkTarget, validation.RuneLength(0, 2000)),
	)
}

// MenuInput replaces the whole item set of a named menu.
type MenuInput struct {
	Name  string          `json:"name"`
	Items []MenuItemInput `json:"items"`
}

func (in MenuInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("menu name is required"), validation.Length(1, 100),
			validation.Match(menuNamePattern).Error("menu name must contain only lowercase letters, digits, hyphens and underscores")),
		validation.Field(&in.Items),
	)
}
