package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dom/videotube-backend/internal/api/respond"
	"github.com/dom/videotube-backend/internal/repository"
)

type HealthHandler struct {
	store repository.HealthChecker
}

func NewHealthHandler(store repository.HealthChecker) *HealthHandler {
	return &HealthHandler{store: store}
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		respond.Success(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Store: "unreachable"}, "Store unreachable")
		return
	}
	respond.OK(w, HealthResponse{Status: "ok", Store: "ok"}, "OK")
}
