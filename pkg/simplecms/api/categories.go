package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"go.uber.org/zap"
)

// CategoryHandler manages the flat category taxonomy
type CategoryHandler struct {
	service simplecms.Service
	logger  *zap.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(service simplecms.Service, logger *zap.Logger) *CategoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryHandler{service: service, logger: logger}
}

// Routes returns the routes for categories
func (h *CategoryHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in simplecms.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	category, err := h.service.CreateCategory(r.Context(), in, actorID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, category)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, categories)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var in simplecms.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), id, in, actorID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, category)
}

// Delete removes the category and detaches it from every item.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id, actorID(r)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
