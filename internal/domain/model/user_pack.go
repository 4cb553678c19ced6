package model

import (
	"time"

	"tax-filing-service/internal/domain"
)

// UserPack is one ledger entry of purchased (or granted) submission quota.
// Each completed purchase creates its own row; rows are never merged so that
// per-purchase usage history is retained. SubmissionsRemaining starts at the
// pack's quota and is decremented by exactly one per funded submission; an
// exhausted entry stays in the ledger.
type UserPack struct {
	ID                   string
	UserID               string
	PackID               string
	SubmissionsRemaining int
	IsPremium            bool // copied from the pack at creation, immutable
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Exhausted reports whether this entry has no usable quota left.
func (up *UserPack) Exhausted() bool { return up.SubmissionsRemaining <= 0 }

// NewUserPack creates a ledger entry for a user from a catalog pack.
func NewUserPack(id, userID string, pack *Pack) (*UserPack, error) {
	if id == "" || userID == "" || pack.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &UserPack{
		ID:                   id,
		UserID:               userID,
		PackID:               pack.ID,
		SubmissionsRemaining: pack.SubmissionQuota,
		IsPremium:            pack.IsPremium,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}
