package repository

import (
	"context"

	"tax-filing-service/internal/domain/model"
)

// SubmissionResultRepository is the port for the append-only calculation
// result history.
type SubmissionResultRepository interface {
	Append(ctx context.Context, tx Tx, r *model.SubmissionResult) error
	// FindLatest returns the newest result for a submission.
	FindLatest(ctx context.Context, tx Tx, submissionID string) (*model.SubmissionResult, error)
	ListBySubmission(ctx context.Context, tx Tx, submissionID string) ([]*model.SubmissionResult, error)
}
