package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/cors"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes caps JSON and multipart request bodies.
const DefaultMaxBodyBytes = 32 << 20

// RouterConfig tunes the HTTP surface.
type RouterConfig struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
	Logger         *zap.Logger

	// SiteTitle and BaseURL describe the site in the Atom feed. An empty
	// BaseURL is taken from the request Host.
	SiteTitle string
	BaseURL   string
}

// NewRouter mounts the admin API under /api/v1/admin and the public read API
// under /api/v1.
func NewRouter(service simplecms.Service, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	pages := NewItemHandler(service.Pages(), logger)
	articles := NewItemHandler(service.Articles(), logger)
	menus := NewMenuHandler(service, logger)

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID", ActorHeader},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}).Handler)
	r.Use(RequestSizeLimitMiddleware(cfg.MaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/feed.xml", NewFeedHandler(service.Articles(), cfg.SiteTitle, cfg.BaseURL, logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/admin", func(r chi.Router) {
			r.Use(ActorMiddleware)
			r.Mount("/pages", pages.AdminRoutes())
			r.Mount("/articles", articles.AdminRoutes())
			r.Mount("/trash", NewTrashHandler(service, logger).Routes())
			r.Mount("/categories", NewCategoryHandler(service, logger).Routes())
			r.Mount("/media", NewMediaHandler(service, logger).Routes())
			r.Mount("/apps", NewAppHandler(service, logger).Routes())
			r.Mount("/menus", menus.AdminRoutes())
			r.Get("/audit-log", AuditHandler(service, logger))
		})

		r.Mount("/pages", pages.PublicRoutes())
		r.Mount("/articles", articles.PublicRoutes())
		r.Mount("/menus", menus.PublicRoutes())
	})

	return r
}
