package repository

import (
	"context"

	"tax-filing-service/internal/domain/model"
)

// UserPackRepository is the port for the per-user quota ledger.
type UserPackRepository interface {
	Save(ctx context.Context, tx Tx, up *model.UserPack) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.UserPack, error)
	// FindByUser returns the user's ledger entries ordered by creation time,
	// oldest first. Exhausted entries are included only when includeExhausted.
	FindByUser(ctx context.Context, tx Tx, userID string, includeExhausted bool) ([]*model.UserPack, error)
	// FindByUserAndPack returns the user's entries for one catalog pack.
	FindByUserAndPack(ctx context.Context, tx Tx, userID, packID string) ([]*model.UserPack, error)
	// ConsumeUnit atomically decrements submissions_remaining by one, guarded
	// by submissions_remaining > 0. Returns domain.ErrConflict when the guard
	// loses a race to zero and domain.ErrNotFound for an unknown id.
	ConsumeUnit(ctx context.Context, tx Tx, id string) error

	// --- Statistics read-only methods ---
	TotalRemaining(ctx context.Context, tx Tx) (int64, error)
	CountByPack(ctx context.Context, tx Tx) (map[string]int, error)
}
