package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"tax-filing-service/internal/domain"
	"tax-filing-service/internal/domain/model"
	"tax-filing-service/internal/domain/ports/repository"
)

// Ensure submissionResultRepo implements repository.SubmissionResultRepository
var _ repository.SubmissionResultRepository = (*submissionResultRepo)(nil)

// submissionResultRepo is append-only: there is no update or delete path.
type submissionResultRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionResultRepo(pool *pgxpool.Pool) *submissionResultRepo {
	return &submissionResultRepo{pool: pool}
}

func (r *submissionResultRepo) Append(ctx context.Context, tx repository.Tx, res *model.SubmissionResult) error {
	const q = `
INSERT INTO submission_results (id, submission_id, results, created_at)
VALUES ($1,$2,$3,$4);`

	_, err := execSQL(ctx, r.pool, tx, q, res.ID, res.SubmissionID, res.Results, res.CreatedAt)
	return normalizeErr(err)
}

func (r *submissionResultRepo) FindLatest(ctx context.Context, tx repository.Tx, submissionID string) (*model.SubmissionResult, error) {
	const q = `
SELECT id, submission_id, results, created_at
  FROM submission_results
 WHERE submission_id=$1
 ORDER BY created_at DESC
 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, submissionID)
	if err != nil {
		return nil, normalizeErr(err)
	}
	res, err := scanResult(row)
	if err != nil {
		return nil, normalizeErr(err)
	}
	return res, nil
}

func (r *submissionResultRepo) ListBySubmission(ctx context.Context, tx repository.Tx, submissionID string) ([]*model.SubmissionResult, error) {
	const q = `
SELECT id, submission_id, results, created_at
  FROM submission_results
 WHERE submission_id=$1
 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, submissionID)
	if err != nil {
		return nil, normalizeErr(err)
	}
	defer rows.Close()
	var out []*model.SubmissionResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanResult(row rowScanner) (*model.SubmissionResult, error) {
	var res model.SubmissionResult
	if err := row.Scan(&res.ID, &res.SubmissionID, &res.Results, &res.CreatedAt); err != nil {
		return nil, err
	}
	return &res, nil
}
