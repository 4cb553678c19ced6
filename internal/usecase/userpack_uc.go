package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tax-filing-service/internal/domain"
	"tax-filing-service/internal/domain/model"
	"tax-filing-service/internal/domain/ports/repository"
)

// Compile-time check
var _ UserPackUseCase = (*userPackUC)(nil)

// UserPackUseCase is the subscription ledger and the allocator deciding which
// ledger entry a new submission consumes.
type UserPackUseCase interface {
	// GrantFreePack gives a user the zero-price catalog pack. Idempotent:
	// a user already holding an entry for the free pack gets that entry back
	// with no side effects.
	GrantFreePack(ctx context.Context, userID string) (*model.UserPack, error)
	// CompletePurchase creates one new ledger entry for a paid pack. Entries
	// are never merged; each purchase keeps its own usage history.
	CompletePurchase(ctx context.Context, tx repository.Tx, userID, packID string) (*model.UserPack, error)
	// SelectUserPack picks the entry a new submission should consume.
	// Premium intent never falls back to standard; standard intent falls back
	// to premium once standard quota is gone. Entries are considered oldest
	// first. No eligible entry yields domain.ErrQuotaExhausted.
	SelectUserPack(ctx context.Context, tx repository.Tx, userID string, preferPremium bool) (*model.UserPack, error)
	// Consume decrements a ledger entry by exactly one unit. A race that
	// drained the entry first surfaces as domain.ErrConflict.
	Consume(ctx context.Context, tx repository.Tx, userPackID string) error
	// PaymentSummary lists the user's ledger for display, active-only or all.
	PaymentSummary(ctx context.Context, userID string, includeExhausted bool) ([]*model.UserPack, error)
}

type userPackUC struct {
	packs  repository.PackRepository
	ledger repository.UserPackRepository

	log *zerolog.Logger
}

func NewUserPackUseCase(packs repository.PackRepository, ledger repository.UserPackRepository, logger *zerolog.Logger) *userPackUC {
	return &userPackUC{packs: packs, ledger: ledger, log: logger}
}

func (uc *userPackUC) GrantFreePack(ctx context.Context, userID string) (*model.UserPack, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	free, err := uc.packs.FindFree(ctx, repository.NoTX)
	if err != nil {
		return nil, fmt.Errorf("find free pack: %w", err)
	}
	existing, err := uc.ledger.FindByUserAndPack(ctx, repository.NoTX, userID, free.ID)
	if err != nil && err != domain.ErrNotFound {
		return nil, err
	}
	if len(existing) > 0 {
		// already granted, exhausted or not
		return existing[0], nil
	}
	// The id is derived from the user so concurrent first grants upsert the
	// same row instead of inserting two.
	up, err := model.NewUserPack(freeGrantID(userID), userID, free)
	if err != nil {
		return nil, err
	}
	if err := uc.ledger.Save(ctx, repository.NoTX, up); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", userID).Str("pack_id", free.ID).Msg("free pack granted")
	return up, nil
}

func freeGrantID(userID string) string {
	return "free-" + userID
}

func (uc *userPackUC) CompletePurchase(ctx context.Context, tx repository.Tx, userID, packID string) (*model.UserPack, error) {
	pack, err := uc.packs.FindByID(ctx, tx, packID)
	if err != nil {
		return nil, fmt.Errorf("find pack: %w", err)
	}
	up, err := model.NewUserPack(uuid.NewString(), userID, pack)
	if err != nil {
		return nil, err
	}
	if err := uc.ledger.Save(ctx, tx, up); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", userID).Str("pack_id", packID).Int("quota", up.SubmissionsRemaining).Msg("purchase completed")
	return up, nil
}

func (uc *userPackUC) SelectUserPack(ctx context.Context, tx repository.Tx, userID string, preferPremium bool) (*model.UserPack, error) {
	entries, err := uc.ledger.FindByUser(ctx, tx, userID, false)
	if err != nil && err != domain.ErrNotFound {
		return nil, err
	}

	if preferPremium {
		for _, e := range entries {
			if e.IsPremium && !e.Exhausted() {
				return e, nil
			}
		}
		// premium intent must be satisfied by premium quota
		return nil, domain.ErrQuotaExhausted
	}

	var premiumFallback *model.UserPack
	for _, e := range entries {
		if e.Exhausted() {
			continue
		}
		if !e.IsPremium {
			return e, nil
		}
		if premiumFallback == nil {
			premiumFallback = e
		}
	}
	if premiumFallback != nil {
		return premiumFallback, nil
	}
	return nil, domain.ErrQuotaExhausted
}

func (uc *userPackUC) Consume(ctx context.Context, tx repository.Tx, userPackID string) error {
	return uc.ledger.ConsumeUnit(ctx, tx, userPackID)
}

func (uc *userPackUC) PaymentSummary(ctx context.Context, userID string, includeExhausted bool) ([]*model.UserPack, error) {
	entries, err := uc.ledger.FindByUser(ctx, repository.NoTX, userID, includeExhausted)
	if err == domain.ErrNotFound {
		return nil, nil
	}
	return entries, err
}
