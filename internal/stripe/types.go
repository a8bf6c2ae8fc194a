package stripe

// CustomerParams describes a member being registered at the gateway.
type CustomerParams struct {
	Name    string
	Email   string
	Phone   string
	Address Address
}

// Address is the billing address attached to a gateway customer.
type Address struct {
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
}

// IntentParams describes a payment to collect.
type IntentParams struct {
	AmountCents  int64             // Amount in euro cents
	Currency     string            // Lowercase ISO currency, e.g. "eur"
	CustomerID   string            // Gateway customer reference
	ReceiptEmail string            // Receipt destination
	Description  string            // Shown on the member's statement
	Metadata     map[string]string // Carries paymentId and isSubscription
}

// Intent is the subset of a gateway payment intent the service works with.
type Intent struct {
	ID             string
	ClientSecret   string
	Status         string
	AmountReceived int64 // In cents
	Created        int64 // Unix seconds
	Description    string
	Metadata       map[string]string
}
