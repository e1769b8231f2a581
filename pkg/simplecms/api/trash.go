package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"go.uber.org/zap"
)

// TrashHandler lists and empties the trash across all kinds
type TrashHandler struct {
	service simplecms.Service
	logger  *zap.Logger
}

func NewTrashHandler(service simplecms.Service, logger *zap.Logger) *TrashHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrashHandler{service: service, logger: logger}
}

func (h *TrashHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/empty", h.Empty)
	return r
}

func (h *TrashHandler) List(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.ListTrash(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, listing)
}

// Empty erases items whose retention window has elapsed.
func (h *TrashHandler) Empty(w http.ResponseWriter, r *http.Request) {
	purged, err := h.service.EmptyTrash(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, purged)
}
