package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tax-filing-service/internal/domain"
	"tax-filing-service/internal/domain/model"
	"tax-filing-service/internal/domain/ports/adapter"
	"tax-filing-service/internal/domain/ports/repository"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// PaymentUseCase handles pack checkout against the payment provider. The
// card capture page is the provider's; on verified callback the purchase is
// completed in the ledger.
type PaymentUseCase interface {
	// Initiate returns the created payment and a redirect URL to the provider.
	Initiate(ctx context.Context, userID, packID, callbackURL string) (*model.Payment, string, error)
	// Confirm verifies a payment by authority and, on success, grants the
	// purchased pack. Idempotent: an already succeeded payment returns as-is.
	Confirm(ctx context.Context, authority string) (*model.Payment, error)
	SumByPeriod(ctx context.Context, period string) (int64, error)
}

type paymentUC struct {
	payments repository.PaymentRepository
	packs    repository.PackRepository
	ledger   UserPackUseCase
	gateway  adapter.PaymentGateway

	log *zerolog.Logger
}

func NewPaymentUseCase(payments repository.PaymentRepository, packs repository.PackRepository, ledger UserPackUseCase, gateway adapter.PaymentGateway, logger *zerolog.Logger) *paymentUC {
	return &paymentUC{payments: payments, packs: packs, ledger: ledger, gateway: gateway, log: logger}
}

func (u *paymentUC) Initiate(ctx context.Context, userID, packID, callbackURL string) (*model.Payment, string, error) {
	pack, err := u.packs.FindByID(ctx, repository.NoTX, packID)
	if err != nil {
		return nil, "", err
	}
	if !pack.Purchasable() {
		return nil, "", domain.ErrInvalidArgument
	}

	description := fmt.Sprintf("Tax submission pack %q", pack.Name)
	authority, payURL, err := u.gateway.RequestPayment(ctx, pack.PriceCents, description, callbackURL)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	p := &model.Payment{
		ID:        uuid.NewString(),
		UserID:    userID,
		PackID:    packID,
		Provider:  u.gateway.Name(),
		Amount:    pack.PriceCents,
		Currency:  "EUR",
		Authority: authority,
		Status:    model.PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.payments.Save(ctx, repository.NoTX, p); err != nil {
		return nil, "", err
	}
	return p, payURL, nil
}

func (u *paymentUC) Confirm(ctx context.Context, authority string) (*model.Payment, error) {
	p, err := u.payments.FindByAuthority(ctx, repository.NoTX, authority)
	if err != nil {
		return nil, err
	}
	if p.Status == model.PaymentStatusSucceeded {
		return p, nil
	}

	refID, verifyErr := u.gateway.VerifyPayment(ctx, authority, p.Amount)
	now := time.Now()
	if verifyErr != nil {
		_ = u.payments.UpdateStatus(ctx, repository.NoTX, p.ID, model.PaymentStatusFailed, nil, nil)
		p.Status = model.PaymentStatusFailed
		p.UpdatedAt = now
		return p, verifyErr
	}

	up, err := u.ledger.CompletePurchase(ctx, repository.NoTX, p.UserID, p.PackID)
	if err != nil {
		// Verified money without a granted pack needs operator attention;
		// keep the payment pending so Confirm can be retried.
		u.log.Error().Err(err).Str("payment_id", p.ID).Msg("verified payment could not be granted")
		return nil, err
	}

	_ = u.payments.UpdateStatus(ctx, repository.NoTX, p.ID, model.PaymentStatusSucceeded, &refID, &up.ID)
	p.Status = model.PaymentStatusSucceeded
	p.RefID = refID
	p.PaidAt = &now
	p.UpdatedAt = now
	p.UserPackID = &up.ID
	return p, nil
}

func (u *paymentUC) SumByPeriod(ctx context.Context, period string) (int64, error) {
	return u.payments.SumByPeriod(ctx, repository.NoTX, period)
}
