// Package planchange handles requests to move the caller to another gym
// plan.
package planchange

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/gymhub/gymhub/internal/http/middlewarectx"
	"github.com/gymhub/gymhub/internal/http/response"
	"github.com/gymhub/gymhub/internal/lib/sl"
	"github.com/gymhub/gymhub/internal/models"
	"github.com/gymhub/gymhub/internal/services/signature"
)

// Service defines the plan-change operation the handler needs.
type Service interface {
	ChangeGymPlan(ctx context.Context, userID, gymPlanID int64) (*signature.ChangeResult, error)
}

// Handler handles plan-change requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates a new Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.signature.planchange"
	log := h.log.With(slog.String("op", op))

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req models.DummyPlanChange
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("missing required parameters"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("missing required parameters"))
		return
	}

	result, err := h.service.ChangeGymPlan(r.Context(), userID, req.GymPlanID)
	if err != nil {
		var pendingErr *signature.PendingPaymentsError
		switch {
		case errors.Is(err, signature.ErrUserNotFound):
			log.Error("user not found", slog.Int64("user_id", userID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.As(err, &pendingErr):
			log.Error("pending payments block plan change",
				slog.Int64("user_id", userID),
				slog.Int("count", pendingErr.Count))
			w.WriteHeader(http.StatusMethodNotAllowed)
			render.JSON(w, r, response.Error(pendingErr.Error()))
		case errors.Is(err, signature.ErrPlanNotFound):
			log.Error("gym plan not found", slog.Int64("gym_plan_id", req.GymPlanID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("gym plan not found"))
		case errors.Is(err, signature.ErrNoActiveSignature):
			log.Error("no active signature", slog.Int64("user_id", userID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no active signature found"))
		default:
			log.Error("failed to change gym plan", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("gym plan change processed",
		slog.Int64("user_id", userID),
		slog.Int64("gym_plan_id", req.GymPlanID))
	render.JSON(w, r, response.StatusOKWithData(result))
}
