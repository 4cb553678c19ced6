package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"tax-filing-service/internal/domain"
	"tax-filing-service/internal/domain/model"
	"tax-filing-service/internal/domain/ports/repository"
)

// Ensure packRepo implements repository.PackRepository
var _ repository.PackRepository = (*packRepo)(nil)

type packRepo struct {
	pool *pgxpool.Pool
}

func NewPackRepo(pool *pgxpool.Pool) *packRepo {
	return &packRepo{pool: pool}
}

const packColumns = `id, name, description, price_cents, submission_quota, is_premium, is_active, created_at`

func (r *packRepo) Save(ctx context.Context, tx repository.Tx, p *model.Pack) error {
	const q = `
INSERT INTO packs (id, name, description, price_cents, submission_quota, is_premium, is_active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  name=$2, description=$3, price_cents=$4, submission_quota=$5, is_premium=$6, is_active=$7;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.Description, p.PriceCents, p.SubmissionQuota, p.IsPremium, p.IsActive, p.CreatedAt)
	return normalizeErr(err)
}

func (r *packRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Pack, error) {
	const q = `SELECT ` + packColumns + ` FROM packs WHERE id=$1;`
	return r.queryOne(ctx, tx, q, id)
}

func (r *packRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Pack, error) {
	const q = `SELECT ` + packColumns + ` FROM packs WHERE name=$1 LIMIT 1;`
	return r.queryOne(ctx, tx, q, name)
}

func (r *packRepo) FindFree(ctx context.Context, tx repository.Tx) (*model.Pack, error) {
	const q = `SELECT ` + packColumns + ` FROM packs WHERE price_cents=0 AND is_active ORDER BY created_at ASC LIMIT 1;`
	return r.queryOne(ctx, tx, q)
}

func (r *packRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Pack, error) {
	const q = `SELECT ` + packColumns + ` FROM packs ORDER BY created_at ASC;`
	return r.queryMany(ctx, tx, q)
}

func (r *packRepo) ListPurchasable(ctx context.Context, tx repository.Tx) ([]*model.Pack, error) {
	const q = `SELECT ` + packColumns + ` FROM packs WHERE is_active AND price_cents > 0 ORDER BY price_cents ASC;`
	return r.queryMany(ctx, tx, q)
}

func (r *packRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Pack, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, normalizeErr(err)
	}
	p, err := scanPack(row)
	if err != nil {
		return nil, normalizeErr(err)
	}
	return p, nil
}

func (r *packRepo) queryMany(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Pack, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, normalizeErr(err)
	}
	defer rows.Close()
	var out []*model.Pack
	for rows.Next() {
		p, err := scanPack(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPack(row rowScanner) (*model.Pack, error) {
	var p model.Pack
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.SubmissionQuota, &p.IsPremium, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
