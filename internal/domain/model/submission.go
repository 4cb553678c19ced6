package model

import (
	"time"

	"tax-filing-service/internal/domain"
)

type SubmissionStatus string

const (
	SubmissionStatusDraft      SubmissionStatus = "draft"
	SubmissionStatusProcessing SubmissionStatus = "processing"
	SubmissionStatusComplete   SubmissionStatus = "complete"
	SubmissionStatusFailed     SubmissionStatus = "failed"
)

type SubmissionTier string

const (
	TierStandard SubmissionTier = "standard"
	TierPremium  SubmissionTier = "premium"
)

// Submission is one tax-filing case. It is created in draft, moves to
// processing when handed to the external processor, and ends complete. A
// processor failure leaves it in processing for manual review; failed is
// reserved for submissions rejected by upfront validation. Tier is fixed at
// creation from the ledger entry that funded it.
type Submission struct {
	ID             string
	UserID         string
	UserPackID     string // ledger entry the creation consumed
	Status         SubmissionStatus
	Tier           SubmissionTier
	Title          string
	SubmissionType string
	FiscalNumber   string
	Year           int
	BaseIrsPath    string // optional pre-filled declaration key at the processor
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TierForPack maps a ledger entry's premium flag onto a submission tier.
func TierForPack(premium bool) SubmissionTier {
	if premium {
		return TierPremium
	}
	return TierStandard
}

// CanCalculate reports whether Calculate may run for the current status.
// Draft starts a first calculation; processing allows a manual re-run.
func (s *Submission) CanCalculate() bool {
	return s.Status == SubmissionStatusDraft || s.Status == SubmissionStatusProcessing
}

// NewSubmission validates and constructs a draft submission funded by the
// given ledger entry.
func NewSubmission(id, userID string, up *UserPack, title, submissionType, fiscalNumber string, year int) (*Submission, error) {
	if id == "" || userID == "" || up == nil || up.ID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if title == "" || submissionType == "" || year <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Submission{
		ID:             id,
		UserID:         userID,
		UserPackID:     up.ID,
		Status:         SubmissionStatusDraft,
		Tier:           TierForPack(up.IsPremium),
		Title:          title,
		SubmissionType: submissionType,
		FiscalNumber:   fiscalNumber,
		Year:           year,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
