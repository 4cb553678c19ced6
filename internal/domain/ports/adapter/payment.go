package adapter

import "context"

// PaymentGateway is the hex port for payment providers.
type PaymentGateway interface {
	Name() string

	// RequestPayment initiates a payment intent and returns the provider
	// authority token and a redirect URL for the checkout page.
	RequestPayment(ctx context.Context, amountCents int64, description, callbackURL string) (authority string, payURL string, err error)
	// VerifyPayment verifies a payment given the authority and expected
	// amount; returns the provider reference id on success.
	VerifyPayment(ctx context.Context, authority string, expectedAmountCents int64) (refID string, err error)
}
