package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // redirected to gateway; awaiting verification
	PaymentStatusSucceeded PaymentStatus = "succeeded" // verified OK at provider
	PaymentStatusFailed    PaymentStatus = "failed"    // verification failed or explicitly failed
)

// Payment records one checkout attempt for a pack. The card capture itself
// happens at the provider; we keep the intent, the provider authority token,
// and the verification outcome.
type Payment struct {
	ID         string
	UserID     string
	PackID     string
	Provider   string
	Amount     int64 // euro cents
	Currency   string
	Authority  string // provider token returned by the payment request
	RefID      string // provider reference id after verification
	Status     PaymentStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
	PaidAt     *time.Time
	UserPackID *string // ledger entry granted once the payment succeeded
}
