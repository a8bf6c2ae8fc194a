// Package stripewebhook receives Stripe events and routes payment intent
// outcomes to the reconciliation logic.
package stripewebhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/gymhub/gymhub/internal/http/response"
	"github.com/gymhub/gymhub/internal/lib/sl"
)

// maxBodyBytes bounds the webhook payload, per Stripe's guidance.
const maxBodyBytes = int64(65536)

// Service defines the reconciliation operations the dispatcher routes to.
type Service interface {
	HandleIntentSucceeded(ctx context.Context, paymentID int64, stripePaymentID string, isSubscription bool) error
	HandleIntentFailed(ctx context.Context, paymentID int64, stripePaymentID string) error
}

// Handler verifies and dispatches Stripe webhook events.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

// New creates a new Handler.
func New(log *slog.Logger, service Service, webhookSecret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: webhookSecret,
	}
}

// ServeHTTP verifies the Stripe-Signature header, extracts the payment
// reference from the intent metadata and hands the event to the service.
// Unknown event types and handler failures are still acked with 200 so
// Stripe does not retry forever; only malformed requests get 400.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stripewebhook"
	log := h.log.With(slog.String("op", op))

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid payload"))
		return
	}

	// Endpoints may be pinned to an API version other than the one this
	// stripe-go release expects; the signature check still applies.
	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Error("webhook signature verification failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			log.Error("failed to parse payment intent", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid event data"))
			return
		}

		paymentID, err := strconv.ParseInt(intent.Metadata["paymentId"], 10, 64)
		if err != nil {
			log.Error("paymentId metadata missing or invalid",
				slog.String("intent_id", intent.ID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("paymentId metadata is required"))
			return
		}

		if event.Type == "payment_intent.succeeded" {
			isSubscription := intent.Metadata["isSubscription"] == "true"
			err = h.service.HandleIntentSucceeded(r.Context(), paymentID, intent.ID, isSubscription)
		} else {
			err = h.service.HandleIntentFailed(r.Context(), paymentID, intent.ID)
		}
		if err != nil {
			// Acked anyway: retrying a delivery will not fix local state,
			// and duplicate deliveries are already tolerated.
			log.Error("webhook reconciliation failed",
				slog.String("event_type", string(event.Type)),
				slog.Int64("payment_id", paymentID),
				sl.Err(err))
		}
	default:
		log.Info("ignoring webhook event", slog.String("event_type", string(event.Type)))
	}

	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.StatusOKWithData("received"))
}
