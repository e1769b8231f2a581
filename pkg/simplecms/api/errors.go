package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

const internalErrorMessage = "internal server error"

// StatusFor maps a service error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, simplecms.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, simplecms.ErrConflict), errors.Is(err, simplecms.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, simplecms.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Anything the caller cannot fix is logged and
// reported as an opaque internal error.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID(r)),
			zap.Error(err))
		msg = internalErrorMessage
	}
	writeMessage(w, r, status, msg)
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeMessage(w, r, http.StatusBadRequest, msg)
}
