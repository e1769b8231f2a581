package api

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"go.uber.org/zap"
)

// AuditHandler lists the audit log, newest first. Supported query
// parameters: page and per_page.
func AuditHandler(service simplecms.Service, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := intQuery(w, r, "page")
		if !ok {
			return
		}
		perPage, ok := intQuery(w, r, "per_page")
		if !ok {
			return
		}

		entries, err := service.ListAuditLog(r.Context(), page, perPage)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		render.JSON(w, r, entries)
	}
}
