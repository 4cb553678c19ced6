package repository

import (
	"context"

	"tax-filing-service/internal/domain/model"
)

// SubmissionRepository is the port for submission persistence.
type SubmissionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Submission) error
	Delete(ctx context.Context, tx Tx, id string) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Submission, error)
	FindByUser(ctx context.Context, tx Tx, userID string) ([]*model.Submission, error)
	// TransitionStatus atomically moves a submission from one of the allowed
	// statuses to the target status. Returns domain.ErrInvalidTransition when
	// the current status is not in from, domain.ErrNotFound for an unknown id.
	TransitionStatus(ctx context.Context, tx Tx, id string, from []model.SubmissionStatus, to model.SubmissionStatus) error

	// --- Statistics read-only methods ---
	CountByStatus(ctx context.Context, tx Tx) (map[model.SubmissionStatus]int, error)
}
