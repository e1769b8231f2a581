package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"go.uber.org/zap"
)

// MenuHandler serves named navigation menus
type MenuHandler struct {
	service simplecms.Service
	logger  *zap.Logger
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(service simplecms.Service, logger *zap.Logger) *MenuHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuHandler{service: service, logger: logger}
}

// AdminRoutes returns the read and replace routes
func (h *MenuHandler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{name}", h.Get)
	r.Put("/{name}", h.Replace)
	return r
}

// PublicRoutes returns the read-only route
func (h *MenuHandler) PublicRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{name}", h.Get)
	return r
}

// ReplaceMenuRequest is the new item set of a menu
type ReplaceMenuRequest struct {
	Items []simplecms.MenuItemInput `json:"items"`
}

func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	menu, err := h.service.GetMenu(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, menu)
}

// Replace swaps every item of the menu, creating it when missing
func (h *MenuHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req ReplaceMenuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	menu, err := h.service.ReplaceMenu(r.Context(), simplecms.MenuInput{
		Name:  chi.URLParam(r, "name"),
		Items: req.Items,
	}, actorID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, menu)
}
