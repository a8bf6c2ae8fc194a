// Package planget returns a single gym plan by id.
package planget

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/gymhub/gymhub/internal/http/response"
	"github.com/gymhub/gymhub/internal/lib/sl"
	"github.com/gymhub/gymhub/internal/models"
	"github.com/gymhub/gymhub/internal/services/gymplan"
)

// Service defines the plan lookup the handler needs.
type Service interface {
	Get(ctx context.Context, id int64) (*models.GymPlan, error)
}

// Handler handles single-plan requests.
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
	const op = "handlers.gymplan.get"
	log := h.log.With(slog.String("op", op))

	rawID := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		log.Error("invalid gym plan id", slog.String("id", rawID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid gym plan id"))
		return
	}

	plan, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, gymplan.ErrPlanNotFound) {
			log.Error("gym plan not found", slog.Int64("gym_plan_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("gym plan not found"))
			return
		}
		log.Error("failed to get gym plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(plan))
}
