// Package respond writes the uniform JSON envelope used by every endpoint.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dom/videotube-backend/internal/apperr"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type ErrorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func OK(w http.ResponseWriter, data any, message string) {
	Success(w, http.StatusOK, data, message)
}

func Created(w http.ResponseWriter, data any, message string) {
	Success(w, http.StatusCreated, data, message)
}

func Success(w http.ResponseWriter, status int, data any, message string) {
	JSON(w, status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// Error maps err onto the error envelope. Untyped errors become a 500 with a
// generic message; their details only reach the log.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.As(err)
	if ae == nil {
		ae = apperr.Internal("Internal server error", err)
	}

	if ae.Status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"status", ae.Status,
			"error", err,
		)
	}

	JSON(w, ae.Status, ErrorEnvelope{
		StatusCode: ae.Status,
		Message:    ae.Message,
		Success:    false,
		Errors:     ae.Details,
	})
}
