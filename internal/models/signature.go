package models

import "time"

// Signature is a member's subscription to a gym plan. A member keeps a
// single current signature; plan changes update it in place and the row is
// deactivated rather than deleted.
type Signature struct {
	ID        int64      `json:"signatureId"`
	UserID    int64      `json:"userId"`
	GymPlanID int64      `json:"gymPlanId"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"` // nil means open-ended
	IsActive  bool       `json:"isActive"`
}

// SignatureWithPlan bundles the current signature with its plan, the shape
// the plan-change engine decides on.
type SignatureWithPlan struct {
	Signature
	Plan GymPlan `json:"gymPlan"`
}

// BillingRefs carries the gateway references needed to provision recurring
// billing for a signature.
type BillingRefs struct {
	StripePriceID    string // Plan price at the gateway
	StripeCustomerID string // Owning user's customer record at the gateway
}

// DummyPlanChange carries a plan-change request. The user is taken from the
// access token, never from the body.
type DummyPlanChange struct {
	GymPlanID int64 `json:"gymPlanId" validate:"required,gt=0"`
}
