// Package paymentintent creates Stripe payment intents for the caller's
// outstanding payments.
package paymentintent

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
	"github.com/gymhub/gymhub/internal/services/payment"
)

// Service defines the intent creation the handler needs.
type Service interface {
	CreateIntent(ctx context.Context, userID int64, req models.DummyPaymentIntent) (*payment.IntentResult, error)
}

// Handler handles intent creation requests.
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
	const op = "handlers.payment.intent"
	log := h.log.With(slog.String("op", op))

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req models.DummyPaymentIntent
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

	result, err := h.service.CreateIntent(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrPaymentNotFound):
			log.Error("payment not found", slog.Int64("payment_id", req.PaymentID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
		case errors.Is(err, payment.ErrAlreadyPaid):
			log.Error("payment already paid", slog.Int64("payment_id", req.PaymentID))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("payment is already paid"))
		case errors.Is(err, payment.ErrForbidden):
			log.Error("payment belongs to another user",
				slog.Int64("payment_id", req.PaymentID),
				slog.Int64("user_id", userID))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("payment belongs to another account"))
		default:
			log.Error("failed to create payment intent", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("payment intent created", slog.Int64("payment_id", req.PaymentID))
	render.JSON(w, r, response.StatusOKWithData(result))
}
