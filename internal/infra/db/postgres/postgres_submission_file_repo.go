package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"tax-filing-service/internal/domain"
	"tax-filing-service/internal/domain/model"
	"tax-filing-service/internal/domain/ports/repository"
)

// Ensure submissionFileRepo implements repository.SubmissionFileRepository
var _ repository.SubmissionFileRepository = (*submissionFileRepo)(nil)

type submissionFileRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionFileRepo(pool *pgxpool.Pool) *submissionFileRepo {
	return &submissionFileRepo{pool: pool}
}

const fileColumns = `id, submission_id, broker_name, file_type, file_path, created_at`

func (r *submissionFileRepo) SaveBatch(ctx context.Context, tx repository.Tx, files []*model.SubmissionFile) error {
	if len(files) == 0 {
		return nil
	}
	const q = `
INSERT INTO submission_files (id, submission_id, broker_name, file_type, file_path, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`

	batch := &pgx.Batch{}
	for _, f := range files {
		batch.Queue(q, f.ID, f.SubmissionID, f.BrokerName, f.FileType, f.FilePath, f.CreatedAt)
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	sender, ok := ex.(interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	})
	if !ok {
		return domain.ErrInvalidExecContext
	}
	res := sender.SendBatch(ctx, batch)
	defer res.Close()
	for range files {
		if _, err := res.Exec(); err != nil {
			return normalizeErr(err)
		}
	}
	return nil
}

func (r *submissionFileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubmissionFile, error) {
	const q = `SELECT ` + fileColumns + ` FROM submission_files WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, normalizeErr(err)
	}
	f, err := scanFile(row)
	if err != nil {
		return nil, normalizeErr(err)
	}
	return f, nil
}

func (r *submissionFileRepo) FindBySubmission(ctx context.Context, tx repository.Tx, submissionID string) ([]*model.SubmissionFile, error) {
	const q = `SELECT ` + fileColumns + ` FROM submission_files WHERE submission_id=$1 ORDER BY created_at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, submissionID)
	if err != nil {
		return nil, normalizeErr(err)
	}
	defer rows.Close()
	var out []*model.SubmissionFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *submissionFileRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM submission_files WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return normalizeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *submissionFileRepo) DeleteBySubmissionAndBroker(ctx context.Context, tx repository.Tx, submissionID, brokerName string) error {
	const q = `DELETE FROM submission_files WHERE submission_id=$1 AND broker_name=$2;`
	_, err := execSQL(ctx, r.pool, tx, q, submissionID, brokerName)
	return normalizeErr(err)
}

func scanFile(row rowScanner) (*model.SubmissionFile, error) {
	var f model.SubmissionFile
	if err := row.Scan(&f.ID, &f.SubmissionID, &f.BrokerName, &f.FileType, &f.FilePath, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}
