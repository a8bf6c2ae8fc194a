// Package paymentverify reports the state of a Stripe payment intent
// together with the local payment it settles.
package paymentverify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/gymhub/gymhub/internal/http/middlewarectx"
	"github.com/gymhub/gymhub/internal/http/response"
	"github.com/gymhub/gymhub/internal/lib/sl"
	"github.com/gymhub/gymhub/internal/services/payment"
)

// Service defines the verification the handler needs.
type Service interface {
	VerifyIntent(ctx context.Context, userID int64, intentID string) (*payment.VerifyResult, error)
}

// Handler handles intent verification requests.
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
	const op = "handlers.payment.verify"
	log := h.log.With(slog.String("op", op))

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	intentID := r.URL.Query().Get("payment_intent")
	if intentID == "" {
		log.Error("payment_intent query parameter missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("payment_intent is required"))
		return
	}

	result, err := h.service.VerifyIntent(r.Context(), userID, intentID)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrPaymentNotFound):
			log.Error("payment not found", slog.String("intent_id", intentID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
		case errors.Is(err, payment.ErrForbidden):
			log.Error("payment belongs to another user", slog.String("intent_id", intentID))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("payment belongs to another account"))
		default:
			log.Error("failed to verify payment intent", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(result))
}
