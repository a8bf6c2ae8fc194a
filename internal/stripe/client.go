// Package stripe wraps the Stripe API client behind the small surface the
// services need: customer creation, payment intents and recurring
// subscription provisioning.
package stripe

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
)

// Client talks to the Stripe API.
type Client struct {
	api *stripe.Client
}

// NewClient builds a Client from the account secret key.
func NewClient(secretKey string) *Client {
	return &Client{
		api: stripe.NewClient(secretKey, nil),
	}
}

// CreateCustomer registers a member as a gateway customer and returns the
// customer reference.
func (c *Client) CreateCustomer(ctx context.Context, params CustomerParams) (string, error) {
	const op = "stripe.CreateCustomer"

	customerParams := &stripe.CustomerCreateParams{
		Name:  stripe.String(params.Name),
		Email: stripe.String(params.Email),
		Phone: stripe.String(params.Phone),
		Address: &stripe.AddressParams{
			Line1:      stripe.String(params.Address.Line1),
			Line2:      stripe.String(params.Address.Line2),
			City:       stripe.String(params.Address.City),
			PostalCode: stripe.String(params.Address.PostalCode),
			Country:    stripe.String(params.Address.Country),
		},
	}
	customer, err := c.api.V1Customers.Create(ctx, customerParams)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return customer.ID, nil
}

// CreatePaymentIntent opens a payment intent with automatic payment
// methods and returns it with the client secret for the checkout form.
func (c *Client) CreatePaymentIntent(ctx context.Context, params IntentParams) (*Intent, error) {
	const op = "stripe.CreatePaymentIntent"

	intentParams := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(params.AmountCents),
		Currency: stripe.String(params.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Customer:     stripe.String(params.CustomerID),
		ReceiptEmail: stripe.String(params.ReceiptEmail),
		Metadata:     params.Metadata,
	}
	if params.Description != "" {
		intentParams.Description = stripe.String(params.Description)
	}

	paymentIntent, err := c.api.V1PaymentIntents.Create(ctx, intentParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return intentFromAPI(paymentIntent), nil
}

// RetrievePaymentIntent fetches an intent by id.
func (c *Client) RetrievePaymentIntent(ctx context.Context, id string) (*Intent, error) {
	const op = "stripe.RetrievePaymentIntent"

	paymentIntent, err := c.api.V1PaymentIntents.Retrieve(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return intentFromAPI(paymentIntent), nil
}

// CreateSubscription provisions recurring billing for a customer on a
// plan price. The subscription activates immediately even when the first
// invoice is incomplete and charges automatically.
func (c *Client) CreateSubscription(ctx context.Context, customerID, priceID string) (string, error) {
	const op = "stripe.CreateSubscription"

	subParams := &stripe.SubscriptionCreateParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionCreateItemParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior:  stripe.String("allow_incomplete"),
		CollectionMethod: stripe.String(string(stripe.SubscriptionCollectionMethodChargeAutomatically)),
	}
	sub, err := c.api.V1Subscriptions.Create(ctx, subParams)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return sub.ID, nil
}

func intentFromAPI(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:             pi.ID,
		ClientSecret:   pi.ClientSecret,
		Status:         string(pi.Status),
		AmountReceived: pi.AmountReceived,
		Created:        pi.Created,
		Description:    pi.Description,
		Metadata:       pi.Metadata,
	}
}
