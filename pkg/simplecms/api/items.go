package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"go.uber.org/zap"
)

// ItemHandler serves one content kind. Pages and articles use the same
// handler with a different Lifecycle.
type ItemHandler struct {
	items  simplecms.Lifecycle
	logger *zap.Logger
}

// NewItemHandler creates a handler for the given lifecycle
func NewItemHandler(items simplecms.Lifecycle, logger *zap.Logger) *ItemHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemHandler{items: items, logger: logger}
}

// AdminRoutes returns the authoring routes for the kind
func (h *ItemHandler) AdminRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/slug-available", h.SlugAvailable)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)

	r.Post("/{id}/publish", h.Publish)
	r.Post("/{id}/trash", h.Trash)
	r.Post("/{id}/restore", h.Restore)

	r.Get("/{id}/revisions", h.ListRevisions)
	r.Post("/{id}/revisions/{revisionID}/restore", h.RestoreRevision)

	return r
}

// PublicRoutes returns the read-only routes for published items
func (h *ItemHandler) PublicRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListPublished)
	r.Get("/{slug}", h.GetPublished)
	r.Get("/{slug}/related", h.Related)
	return r
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		badRequest(w, r, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// Create creates a new item
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in simplecms.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	item, err := h.items.Create(r.Context(), in, actorID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, item)
}

// Get returns an item regardless of status
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	item, err := h.items.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, item)
}

// Update applies a partial update
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var in simplecms.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	item, err := h.items.Update(r.Context(), id, in, actorID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, item)
}

// List returns a page of items. Supported query parameters: status, q,
// category, order, page and per_page.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := simplecms.ListFilter{
		Status: simplecms.Status(query.Get("status")),
		Query:  query.Get("q"),
		Order:  simplecms.ListOrder(query.Get("order")),
	}

	if raw := query.Get("category"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			badRequest(w, r, "invalid category")
			return
		}
		filter.CategoryID = &categoryID
	}

	var ok bool
	if filter.Page, ok = intQuery(w, r, "page"); !ok {
		return
	}
	if filter.PerPage, ok = intQuery(w, r, "per_page"); !ok {
		return
	}

	page, err := h.items.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, page)
}

func intQuery(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(w, r, "invalid "+name)
		return 0, false
	}
	return n, true
}

// SlugAvailableResponse answers a slug availability check
type SlugAvailableResponse struct {
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
}

// SlugAvailable reports whether ?slug= is free, ignoring ?exclude= (the item
// being edited).
func (h *ItemHandler) SlugAvailable(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		badRequest(w, r, "slug is required")
		return
	}

	exclude := uuid.Nil
	if raw := r.URL.Query().Get("exclude"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(w, r, "invalid exclude")
			return
		}
		exclude = id
	}

	available, err := h.items.IsSlugAvailable(r.Context(), slug, exclude)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, SlugAvailableResponse{Slug: slug, Available: available})
}

type transitionFunc func(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*simplecms.Item, error)

func (h *ItemHandler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	item, err := fn(r.Context(), id, actorID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, item)
}

// Publish publishes an item immediately
func (h *ItemHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.items.Publish)
}

// Trash moves an item to the trash
func (h *ItemHandler) Trash(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.items.Trash)
}

// Restore brings a trashed item back as a draft
func (h *ItemHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.items.Restore)
}

// ListRevisions returns the item's revisions, newest first
func (h *ItemHandler) ListRevisions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	revisions, err := h.items.ListRevisions(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, revisions)
}

// RestoreRevision copies a revision's fields back onto the item
func (h *ItemHandler) RestoreRevision(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	revisionID, ok := parseIDParam(w, r, "revisionID")
	if !ok {
		return
	}

	item, err := h.items.RestoreRevision(r.Context(), id, revisionID, actorID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, item)
}

// GetPublished returns a published item by slug
func (h *ItemHandler) GetPublished(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, item)
}

// ListPublished returns published items, newest first
func (h *ItemHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	page, ok := intQuery(w, r, "page")
	if !ok {
		return
	}
	perPage, ok := intQuery(w, r, "per_page")
	if !ok {
		return
	}

	items, err := h.items.ListPublished(r.Context(), page, perPage)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, items)
}

// Related returns published items sharing a category with the item at
// {slug}. ?limit= caps the result.
func (h *ItemHandler) Related(w http.ResponseWriter, r *http.Request) {
	limit, ok := intQuery(w, r, "limit")
	if !ok {
		return
	}

	item, err := h.items.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	related, err := h.items.Related(r.Context(), item.ID, limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, related)
}
