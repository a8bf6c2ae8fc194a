// Package payment exposes a member's payment history, creates Stripe
// payment intents for outstanding charges and reconciles the outcome
// reported by Stripe back into local state.
package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/gymhub/gymhub/internal/models"
	stripeclient "github.com/gymhub/gymhub/internal/stripe"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrAlreadyPaid     = errors.New("payment is already paid")
	ErrForbidden       = errors.New("payment belongs to another user")
)

// Repository defines the storage methods the payment service needs.
type Repository interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID int64) ([]*models.Payment, error)
	// GetPaymentBilling returns the payment joined with the member and
	// plan fields needed to bill it.
	GetPaymentBilling(ctx context.Context, id int64) (*models.PaymentBilling, error)
	// MarkPaymentPaid flips the payment to paid and stores the Stripe
	// payment id. Returns false when the payment was already paid.
	MarkPaymentPaid(ctx context.Context, id int64, stripePaymentID string) (bool, error)
	// MarkPaymentPending returns the payment to pending and stores the
	// Stripe payment id of the failed attempt.
	MarkPaymentPending(ctx context.Context, id int64, stripePaymentID string) error
	// SetSignatureActive flips the active flag of a signature.
	SetSignatureActive(ctx context.Context, signatureID int64, isActive bool) error
	// GetBillingRefs returns the Stripe price and customer ids behind a
	// signature.
	GetBillingRefs(ctx context.Context, signatureID int64) (*models.BillingRefs, error)
	// FindPaymentDetails matches a payment by Stripe payment id or by
	// local id, joined with the owning member.
	FindPaymentDetails(ctx context.Context, stripePaymentID string, paymentID int64) (*models.PaymentDetails, error)
}

// Gateway is the Stripe surface the service depends on.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, params stripeclient.IntentParams) (*stripeclient.Intent, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*stripeclient.Intent, error)
	CreateSubscription(ctx context.Context, customerID, priceID string) (string, error)
}

// Service implements payment listing, intent creation, verification and
// reconciliation.
type Service struct {
	repo    Repository
	gateway Gateway
	log     *slog.Logger
}

// New creates a Service.
func New(repo Repository, gateway Gateway, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		gateway: gateway,
		log:     log,
	}
}

// ListUserPayments returns the member's payments, newest first.
func (s *Service) ListUserPayments(ctx context.Context, userID int64) ([]*models.Payment, error) {
	return s.repo.ListPaymentsByUser(ctx, userID)
}

// IntentResult carries the client secret the browser needs to confirm the
// payment.
type IntentResult struct {
	ClientSecret string `json:"clientSecret"`
}

// CreateIntent creates a Stripe payment intent for one of the member's
// payments. The payment id and the subscription flag travel in the intent
// metadata so the webhook can reconcile the outcome later.
func (s *Service) CreateIntent(ctx context.Context, userID int64, req models.DummyPaymentIntent) (*IntentResult, error) {
	const op = "services.payment.CreateIntent"

	billing, err := s.repo.GetPaymentBilling(ctx, req.PaymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if billing.UserID != userID {
		return nil, ErrForbidden
	}
	// A recurring setup charge may be retried, a one-off charge may not.
	if !req.IsSubscription && billing.StatusID == models.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}

	cents := billing.Amount.Mul(decimal.NewFromInt(100)).IntPart()
	metadata := map[string]string{
		"paymentId": strconv.FormatInt(billing.PaymentID, 10),
	}
	if req.IsSubscription {
		metadata["isSubscription"] = "true"
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, stripeclient.IntentParams{
		AmountCents:  cents,
		Currency:     "eur",
		CustomerID:   billing.StripeCustomerID,
		ReceiptEmail: billing.Email,
		Description:  fmt.Sprintf("Payment #%d - %s", billing.PaymentID, billing.PlanName),
		Metadata:     metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment intent created",
		slog.Int64("payment_id", billing.PaymentID),
		slog.String("intent_id", intent.ID))

	return &IntentResult{ClientSecret: intent.ClientSecret}, nil
}

// VerifyResult merges the Stripe intent state with the local payment row.
type VerifyResult struct {
	Status         string                 `json:"status"`
	AmountReceived int64                  `json:"amountReceived"`
	Created        int64                  `json:"created"`
	Description    string                 `json:"description"`
	Payment        *models.PaymentDetails `json:"payment"`
}

// VerifyIntent retrieves a payment intent from Stripe and pairs it with
// the local payment it refers to. The intent metadata falls back to the
// stored Stripe payment id when looking the row up.
func (s *Service) VerifyIntent(ctx context.Context, userID int64, intentID string) (*VerifyResult, error) {
	const op = "services.payment.VerifyIntent"

	intent, err := s.gateway.RetrievePaymentIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var metaPaymentID int64
	if raw, ok := intent.Metadata["paymentId"]; ok {
		metaPaymentID, _ = strconv.ParseInt(raw, 10, 64)
	}

	details, err := s.repo.FindPaymentDetails(ctx, intent.ID, metaPaymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if details.UserID != userID {
		return nil, ErrForbidden
	}

	return &VerifyResult{
		Status:         intent.Status,
		AmountReceived: intent.AmountReceived,
		Created:        intent.Created,
		Description:    intent.Description,
		Payment:        details,
	}, nil
}
