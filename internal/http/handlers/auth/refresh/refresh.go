// Package refresh exchanges the refresh-token cookie for a new access
// token.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/gymhub/gymhub/internal/http/response"
	"github.com/gymhub/gymhub/internal/lib/sl"
	"github.com/gymhub/gymhub/internal/services/auth"
)

// Service defines the auth operations the handler needs.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (*auth.SessionResult, error)
}

// Handler handles token refresh requests.
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
	const op = "handlers.auth.refresh"
	log := h.log.With(slog.String("op", op))

	cookie, err := r.Cookie("refreshToken")
	if err != nil {
		log.Error("refresh cookie missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("not authenticated"))
		return
	}

	result, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			log.Error("invalid refresh token")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("invalid refresh token"))
		case errors.Is(err, auth.ErrUserNotFound):
			log.Error("user behind refresh token no longer exists")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("invalid refresh token"))
		default:
			log.Error("failed to refresh token", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(result))
}
