package model

import (
	"time"

	"tax-filing-service/internal/domain"
)

// Pack is a purchasable catalog entry granting a quota of tax submissions.
// Price is stored in euro cents; a pack with PriceCents == 0 is the free-tier
// grant given to every new user. Packs are seeded administratively and never
// mutated by the submission flow.
type Pack struct {
	ID              string
	Name            string
	Description     string
	PriceCents      int64
	SubmissionQuota int
	IsPremium       bool
	IsActive        bool
	CreatedAt       time.Time
}

func (p *Pack) IsZero() bool { return p == nil || p.ID == "" }

// Purchasable reports whether the pack can appear in the checkout catalog.
func (p *Pack) Purchasable() bool { return p.IsActive && p.PriceCents > 0 }

// NewPack validates and constructs a catalog pack.
func NewPack(id, name, description string, priceCents int64, quota int, premium, active bool) (*Pack, error) {
	if id == "" || name == "" || quota <= 0 || priceCents < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Pack{
		ID:              id,
		Name:            name,
		Description:     description,
		PriceCents:      priceCents,
		SubmissionQuota: quota,
		IsPremium:       premium,
		IsActive:        active,
		CreatedAt:       time.Now(),
	}, nil
}
