package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment status identifiers, matching the seeded payment_statuses rows.
// Transitions in this service are pending -> paid on gateway success and
// back to pending on gateway failure; refunded exists in the schema but no
// flow here drives it.
const (
	PaymentStatusPending  = 1
	PaymentStatusPaid     = 2
	PaymentStatusRefunded = 3
)

// Payment is a billable event tied to a signature.
type Payment struct {
	ID              int64           `json:"paymentId"`
	SignatureID     int64           `json:"signatureId"`
	Title           string          `json:"title"`
	Amount          decimal.Decimal `json:"amount"`
	Date            time.Time       `json:"date"`
	StripePaymentID string          `json:"paymentStripeId,omitempty"` // PaymentIntent id once known
	StatusID        int             `json:"-"`
	StatusName      string          `json:"paymentStatusName,omitempty"`
}

// PaymentBilling bundles a payment with the owner and plan details needed
// to start collecting it at the gateway.
type PaymentBilling struct {
	PaymentID        int64
	Amount           decimal.Decimal
	StatusID         int
	SignatureID      int64
	UserID           int64
	Email            string
	StripeCustomerID string
	PlanName         string
}

// PaymentDetails is the merged payment view returned by the verification
// endpoint after a checkout round-trip.
type PaymentDetails struct {
	PaymentID  int64           `json:"paymentIdFromDb"`
	Amount     decimal.Decimal `json:"paymentAmount"`
	Date       time.Time       `json:"paymentDate"`
	StatusName string          `json:"-"`
	UserID     int64           `json:"-"`
	Email      string          `json:"paymentUserEmail"`
}

// DummyPaymentIntent carries a request to start collecting a payment at
// the gateway.
type DummyPaymentIntent struct {
	PaymentID      int64 `json:"paymentId" validate:"required,gt=0"`
	IsSubscription bool  `json:"isSubscription"`
}
