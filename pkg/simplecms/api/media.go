package api

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"go.uber.org/zap"
)

// maxMultipartMemory is the part of an upload kept in memory before
// spilling to temporary files.
const maxMultipartMemory = 8 << 20

// MediaHandler serves the media library
type MediaHandler struct {
	service simplecms.Service
	logger  *zap.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(service simplecms.Service, logger *zap.Logger) *MediaHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaHandler{service: service, logger: logger}
}

// Routes returns the routes for media
func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Upload)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/download", h.Download)
	r.Get("/{id}/url", h.DownloadURL)
	r.Delete("/{id}", h.Delete)

	return r
}

// MediaListResponse is one page of the media library
type MediaListResponse struct {
	Items   []*simplecms.Media `json:"items"`
	Total   int64              `json:"total"`
	Page    int                `json:"page"`
	PerPage int                `json:"per_page"`
}

// MediaURLResponse carries a download URL
type MediaURLResponse struct {
	URL string `json:"url"`
}

// Upload accepts a multipart form with a "file" part and an optional
// "alt_text" field.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		badRequest(w, r, "invalid multipart form: "+err.Error())
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, r, "file is required")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	media, err := h.service.UploadMedia(r.Context(), simplecms.UploadMediaInput{
		Reader:           file,
		OriginalFilename: header.Filename,
		MimeType:         mimeType,
		AltText:          r.FormValue("alt_text"),
	}, actorID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, media)
}

func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	page, ok := intQuery(w, r, "page")
	if !ok {
		return
	}
	perPage, ok := intQuery(w, r, "per_page")
	if !ok {
		return
	}
	filter := simplecms.ListFilter{Page: page, PerPage: perPage}.Normalize()

	items, total, err := h.service.ListMedia(r.Context(), filter.Page, filter.PerPage)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, MediaListResponse{
		Items:   items,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	})
}

func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	media, err := h.service.GetMedia(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, media)
}

// Download streams the stored bytes
func (h *MediaHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	reader, media, err := h.service.DownloadMedia(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", media.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": media.Filename}))
	if media.SizeBytes > 0 {
		w.Header().Set("Content-Length", fmt.Sprint(media.SizeBytes))
	}
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("media download interrupted", zap.String("media_id", id.String()), zap.Error(err))
	}
}

// DownloadURL returns a direct URL when the blob store can produce one.
func (h *MediaHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	url, err := h.service.MediaDownloadURL(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, MediaURLResponse{URL: url})
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteMedia(r.Context(), id, actorID(r)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
