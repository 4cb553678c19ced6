package repository

import (
	"context"

	"tax-filing-service/internal/domain/model"
)

// SubmissionFileRepository is the port for the local mirror of broker files
// stored at the external processor.
type SubmissionFileRepository interface {
	// SaveBatch inserts the accepted files of one upload in a single batch.
	SaveBatch(ctx context.Context, tx Tx, files []*model.SubmissionFile) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.SubmissionFile, error)
	FindBySubmission(ctx context.Context, tx Tx, submissionID string) ([]*model.SubmissionFile, error)
	Delete(ctx context.Context, tx Tx, id string) error
	DeleteBySubmissionAndBroker(ctx context.Context, tx Tx, submissionID, brokerName string) error
}
