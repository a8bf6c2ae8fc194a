package models

import "github.com/shopspring/decimal"

// GymPlan is a catalog entry describing a subscription tier. Plans are
// static reference data and are never mutated by the flows in this service.
type GymPlan struct {
	ID              int64           `json:"gymPlanId"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"` // Monthly price in euros
	StripeProductID string          `json:"-"`     // Product reference at the gateway
	StripePriceID   string          `json:"-"`     // Recurring price reference at the gateway
	IsActive        bool            `json:"isActive"`
}
