package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"tax-filing-service/internal/domain"
	"tax-filing-service/internal/domain/model"
	"tax-filing-service/internal/domain/ports/repository"
	"tax-filing-service/internal/infra/metrics"
)

// Ensure userPackRepo implements repository.UserPackRepository
var _ repository.UserPackRepository = (*userPackRepo)(nil)

type userPackRepo struct {
	pool *pgxpool.Pool
}

func NewUserPackRepo(pool *pgxpool.Pool) *userPackRepo {
	return &userPackRepo{pool: pool}
}

const userPackColumns = `id, user_id, pack_id, submissions_remaining, is_premium, created_at, updated_at`

func (r *userPackRepo) Save(ctx context.Context, tx repository.Tx, up *model.UserPack) error {
	const q = `
INSERT INTO user_packs (id, user_id, pack_id, submissions_remaining, is_premium, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  submissions_remaining=$4, updated_at=$7;`

	_, err := execSQL(ctx, r.pool, tx, q, up.ID, up.UserID, up.PackID, up.SubmissionsRemaining, up.IsPremium, up.CreatedAt, up.UpdatedAt)
	return normalizeErr(err)
}

func (r *userPackRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserPack, error) {
	const q = `SELECT ` + userPackColumns + ` FROM user_packs WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, normalizeErr(err)
	}
	up, err := scanUserPack(row)
	if err != nil {
		return nil, normalizeErr(err)
	}
	return up, nil
}

func (r *userPackRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string, includeExhausted bool) ([]*model.UserPack, error) {
	q := `SELECT ` + userPackColumns + ` FROM user_packs WHERE user_id=$1`
	if !includeExhausted {
		q += ` AND submissions_remaining > 0`
	}
	q += ` ORDER BY created_at ASC;`
	return r.queryMany(ctx, tx, q, userID)
}

func (r *userPackRepo) FindByUserAndPack(ctx context.Context, tx repository.Tx, userID, packID string) ([]*model.UserPack, error) {
	const q = `SELECT ` + userPackColumns + ` FROM user_packs WHERE user_id=$1 AND pack_id=$2 ORDER BY created_at ASC;`
	return r.queryMany(ctx, tx, q, userID, packID)
}

// ConsumeUnit is the allocation write path: a single conditional UPDATE so
// two racing submissions can never drive the counter below zero.
func (r *userPackRepo) ConsumeUnit(ctx context.Context, tx repository.Tx, id string) error {
	const q = `
UPDATE user_packs
   SET submissions_remaining = submissions_remaining - 1, updated_at = NOW()
 WHERE id=$1 AND submissions_remaining > 0;`

	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return normalizeErr(err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing row from a drained one.
		if _, ferr := r.FindByID(ctx, tx, id); ferr != nil {
			return ferr
		}
		metrics.IncConsumeConflict()
		return domain.ErrConflict
	}
	return nil
}

func (r *userPackRepo) TotalRemaining(ctx context.Context, tx repository.Tx) (int64, error) {
	const q = `SELECT COALESCE(SUM(submissions_remaining),0) FROM user_packs;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, normalizeErr(err)
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *userPackRepo) CountByPack(ctx context.Context, tx repository.Tx) (map[string]int, error) {
	const q = `SELECT pack_id, COUNT(*) FROM user_packs GROUP BY pack_id;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, normalizeErr(err)
	}
	defer rows.Close()
	m := make(map[string]int)
	for rows.Next() {
		var packID string
		var c int
		if err := rows.Scan(&packID, &c); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		m[packID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return m, nil
}

func (r *userPackRepo) queryMany(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.UserPack, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, normalizeErr(err)
	}
	defer rows.Close()
	var out []*model.UserPack
	for rows.Next() {
		up, err := scanUserPack(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, up)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanUserPack(row rowScanner) (*model.UserPack, error) {
	var up model.UserPack
	if err := row.Scan(&up.ID, &up.UserID, &up.PackID, &up.SubmissionsRemaining, &up.IsPremium, &up.CreatedAt, &up.UpdatedAt); err != nil {
		return nil, err
	}
	return &up, nil
}
