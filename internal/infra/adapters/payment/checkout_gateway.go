// File: internal/infra/adapters/payment/checkout_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"tax-filing-service/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*CheckoutGateway)(nil)

// CheckoutGateway implements adapter.PaymentGateway against a hosted
// checkout provider: request an intent, redirect the user, verify on
// callback.
type CheckoutGateway struct {
	merchantID string
	callback   string
	baseURL    string
	client     *http.Client
}

func NewCheckoutGateway(merchantID, callbackURL, baseURL string) (*CheckoutGateway, error) {
	if merchantID == "" {
		return nil, errors.New("merchant id empty")
	}
	if _, err := url.Parse(callbackURL); err != nil {
		return nil, fmt.Errorf("invalid callback url: %w", err)
	}
	return &CheckoutGateway{
		merchantID: merchantID,
		callback:   callbackURL,
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *CheckoutGateway) Name() string { return "checkout" }

// RequestPayment creates a payment intent and returns (authority, payURL).
func (g *CheckoutGateway) RequestPayment(ctx context.Context, amountCents int64, description, callbackURL string) (string, string, error) {
	if callbackURL == "" {
		callbackURL = g.callback
	}
	payload := map[string]any{
		"merchant_id":  g.merchantID,
		"amount":       amountCents,
		"description":  description,
		"callback_url": callbackURL,
	}
	b, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payment/request", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	var out struct {
		Authority string `json:"authority"`
		PayURL    string `json:"pay_url"`
		Code      int    `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}
	if out.Code != 100 || out.Authority == "" {
		return "", "", errors.New("payment request failed")
	}
	return out.Authority, out.PayURL, nil
}

// VerifyPayment verifies a callback and returns the provider refID on success.
func (g *CheckoutGateway) VerifyPayment(ctx context.Context, authority string, expectedAmountCents int64) (string, error) {
	payload := map[string]any{
		"merchant_id": g.merchantID,
		"amount":      expectedAmountCents,
		"authority":   authority,
	}
	b, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payment/verify", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var out struct {
		Code  int    `json:"code"`
		RefID string `json:"ref_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	// 100 is success, 101 means already verified. Both carry a ref id.
	if (out.Code != 100 && out.Code != 101) || out.RefID == "" {
		return "", errors.New("payment verify failed")
	}
	return out.RefID, nil
}
