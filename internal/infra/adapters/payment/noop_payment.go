package payment

import (
	"context"
	"fmt"
	"sync"

	"tax-filing-service/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is a simple in-memory gateway for dev mode and tests.
type NoopPaymentGateway struct {
	mu      sync.Mutex
	seq     int64
	intents map[string]int64 // authority -> expected amount (cents)
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{
		intents: make(map[string]int64),
	}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) next() string {
	g.seq++
	return fmt.Sprintf("noop-%d", g.seq)
}

func (g *NoopPaymentGateway) RequestPayment(ctx context.Context, amountCents int64, description, callbackURL string) (authority string, payURL string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	authority = g.next()
	g.intents[authority] = amountCents
	return authority, "https://example.test/pay/" + authority, nil
}

func (g *NoopPaymentGateway) VerifyPayment(ctx context.Context, authority string, expectedAmountCents int64) (refID string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	exp, ok := g.intents[authority]
	if !ok {
		return "", fmt.Errorf("noop: authority not found")
	}
	if exp != expectedAmountCents {
		return "", fmt.Errorf("noop: amount mismatch: expected %d got %d", exp, expectedAmountCents)
	}
	return "ref-" + authority, nil
}
