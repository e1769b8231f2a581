package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"go.uber.org/zap"
)

// AppHandler manages the app launcher
type AppHandler struct {
	service simplecms.Service
	logger  *zap.Logger
}

// NewAppHandler creates a new app handler
func NewAppHandler(service simplecms.Service, logger *zap.Logger) *AppHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppHandler{service: service, logger: logger}
}

// Routes returns the routes for apps. /reorder is registered before /{id}
// so it is not taken for an id.
func (h *AppHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Put("/reorder", h.Reorder)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// ReorderRequest lists app ids in their new order
type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func (h *AppHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in simplecms.AppInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	app, err := h.service.CreateApp(r.Context(), in, actorID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, app)
}

func (h *AppHandler) List(w http.ResponseWriter, r *http.Request) {
	page, ok := intQuery(w, r, "page")
	if !ok {
		return
	}
	perPage, ok := intQuery(w, r, "per_page")
	if !ok {
		return
	}

	apps, err := h.service.ListApps(r.Context(), page, perPage)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, apps)
}

func (h *AppHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	app, err := h.service.GetApp(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, app)
}

// Update applies a partial update
func (h *AppHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var in simplecms.AppUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	app, err := h.service.UpdateApp(r.Context(), id, in, actorID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, app)
}

func (h *AppHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	if err := h.service.ReorderApps(r.Context(), req.IDs, actorID(r)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AppHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteApp(r.Context(), id, actorID(r)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
