// Package logout clears the refresh-token cookie.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/gymhub/gymhub/internal/http/response"
)

// Handler handles logout requests. It is stateless: tokens are not
// tracked server side, so logging out only drops the cookie.
type Handler struct {
	log *slog.Logger
}

// New creates a new Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"
	log := h.log.With(slog.String("op", op))

	if _, err := r.Cookie("refreshToken"); err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	log.Info("member logged out")
	render.JSON(w, r, response.StatusOKWithData("logged out"))
}
