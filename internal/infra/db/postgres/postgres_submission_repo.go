package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"tax-filing-service/internal/domain"
	"tax-filing-service/internal/domain/model"
	"tax-filing-service/internal/domain/ports/repository"
	"tax-filing-service/internal/infra/security"
)

// Ensure submissionRepo implements repository.SubmissionRepository
var _ repository.SubmissionRepository = (*submissionRepo)(nil)

// submissionRepo stores submissions with the fiscal number encrypted at rest.
type submissionRepo struct {
	pool *pgxpool.Pool
	enc  *security.EncryptionService
}

func NewSubmissionRepo(pool *pgxpool.Pool, enc *security.EncryptionService) *submissionRepo {
	return &submissionRepo{pool: pool, enc: enc}
}

const submissionColumns = `id, user_id, user_pack_id, status, tier, title, submission_type, fiscal_number, year, base_irs_path, created_at, updated_at`

func (r *submissionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Submission) error {
	fiscal, err := r.enc.Encrypt(s.FiscalNumber)
	if err != nil {
		return domain.ErrOperationFailed
	}
	const q = `
INSERT INTO submissions (id, user_id, user_pack_id, status, tier, title, submission_type, fiscal_number, year, base_irs_path, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
  status=$4, title=$6, submission_type=$7, fiscal_number=$8, year=$9, base_irs_path=$10, updated_at=$12;`

	_, err = execSQL(ctx, r.pool, tx, q, s.ID, s.UserID, s.UserPackID, s.Status, s.Tier, s.Title, s.SubmissionType, fiscal, s.Year, s.BaseIrsPath, s.CreatedAt, s.UpdatedAt)
	return normalizeErr(err)
}

func (r *submissionRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM submissions WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return normalizeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *submissionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Submission, error) {
	const q = `SELECT ` + submissionColumns + ` FROM submissions WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, normalizeErr(err)
	}
	s, err := r.scanSubmission(row)
	if err != nil {
		return nil, normalizeErr(err)
	}
	return s, nil
}

func (r *submissionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Submission, error) {
	const q = `SELECT ` + submissionColumns + ` FROM submissions WHERE user_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, normalizeErr(err)
	}
	defer rows.Close()
	var out []*model.Submission
	for rows.Next() {
		s, err := r.scanSubmission(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

// TransitionStatus is the orchestrator's write path: the guard on the current
// status makes the transition atomic, so two concurrent calls cannot both
// move the same submission.
func (r *submissionRepo) TransitionStatus(ctx context.Context, tx repository.Tx, id string, from []model.SubmissionStatus, to model.SubmissionStatus) error {
	const q = `
UPDATE submissions
   SET status=$2, updated_at=NOW()
 WHERE id=$1 AND status = ANY($3);`

	allowed := make([]string, len(from))
	for i, st := range from {
		allowed[i] = string(st)
	}
	tag, err := execSQL(ctx, r.pool, tx, q, id, to, allowed)
	if err != nil {
		return normalizeErr(err)
	}
	if tag.RowsAffected() == 0 {
		if _, ferr := r.FindByID(ctx, tx, id); ferr != nil {
			return ferr
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *submissionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubmissionStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM submissions GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, normalizeErr(err)
	}
	defer rows.Close()
	m := make(map[model.SubmissionStatus]int)
	for rows.Next() {
		var status string
		var c int
		if err := rows.Scan(&status, &c); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		m[model.SubmissionStatus(status)] = c
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return m, nil
}

func (r *submissionRepo) scanSubmission(row rowScanner) (*model.Submission, error) {
	var s model.Submission
	var fiscal string
	if err := row.Scan(&s.ID, &s.UserID, &s.UserPackID, &s.Status, &s.Tier, &s.Title, &s.SubmissionType, &fiscal, &s.Year, &s.BaseIrsPath, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	plain, err := r.enc.Decrypt(fiscal)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	s.FiscalNumber = plain
	return &s, nil
}
