package model

import (
	"time"

	"tax-filing-service/internal/domain"
)

// SubmissionResult stores one raw calculation payload returned by the
// external processor. Rows are append-only; the newest row is the one shown
// to the user, older rows are kept as history.
type SubmissionResult struct {
	ID           string
	SubmissionID string
	Results      []byte // opaque processor payload, stored verbatim
	CreatedAt    time.Time
}

func NewSubmissionResult(id, submissionID string, results []byte) (*SubmissionResult, error) {
	if id == "" || submissionID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &SubmissionResult{
		ID:           id,
		SubmissionID: submissionID,
		Results:      results,
		CreatedAt:    time.Now(),
	}, nil
}
