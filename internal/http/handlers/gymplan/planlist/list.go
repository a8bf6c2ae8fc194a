// Package planlist returns the active gym plan catalog.
package planlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/gymhub/gymhub/internal/http/response"
	"github.com/gymhub/gymhub/internal/lib/sl"
	"github.com/gymhub/gymhub/internal/models"
)

// Service defines the catalog listing the handler needs.
type Service interface {
	ListActive(ctx context.Context) ([]*models.GymPlan, error)
}

// Handler handles catalog requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a new Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.gymplan.list"
	log := h.log.With(slog.String("op", op))

	plans, err := h.service.ListActive(r.Context())
	if err != nil {
		log.Error("failed to list gym plans", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(plans))
}
