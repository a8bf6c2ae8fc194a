// Package register handles member registration.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/gymhub/gymhub/internal/http/response"
	"github.com/gymhub/gymhub/internal/lib/sl"
	"github.com/gymhub/gymhub/internal/models"
	"github.com/gymhub/gymhub/internal/services/auth"
)

// Service defines the auth operations the handler needs.
type Service interface {
	Register(ctx context.Context, req models.DummyRegister) (*auth.RegisterResult, error)
}

// Handler handles registration requests.
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
	const op = "handlers.auth.register"
	log := h.log.With(slog.String("op", op))

	var req models.DummyRegister
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.service.Register(r.Context(), req)
	if err != nil {
		var emailErr *auth.EmailTakenError
		var nifErr *auth.NIFTakenError
		switch {
		case errors.As(err, &emailErr):
			log.Error("email already registered", slog.String("email", emailErr.Email))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("email is already registered"))
		case errors.As(err, &nifErr):
			log.Error("nif already registered")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("nif is already registered"))
		case errors.Is(err, auth.ErrPlanNotFound):
			log.Error("gym plan not found", slog.Int64("gym_plan_id", req.GymPlanID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("gym plan not found"))
		default:
			log.Error("failed to register member", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	setRefreshCookie(w, result.RefreshToken)
	result.RefreshToken = ""

	log.Info("member registered", slog.Int64("payment_id", result.PaymentID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(result))
}

// setRefreshCookie installs the long-lived refresh token as an httpOnly
// cookie so the browser cannot read it from script.
func setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    token,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
