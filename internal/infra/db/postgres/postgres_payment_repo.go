package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"tax-filing-service/internal/domain"
	"tax-filing-service/internal/domain/model"
	"tax-filing-service/internal/domain/ports/repository"
)

// Ensure paymentRepo implements repository.PaymentRepository
var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, user_id, pack_id, provider, amount_cents, currency, authority, ref_id, status, created_at, updated_at, paid_at, user_pack_id`

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (id, user_id, pack_id, provider, amount_cents, currency, authority, ref_id, status, created_at, updated_at, paid_at, user_pack_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
  ref_id=$8, status=$9, updated_at=$11, paid_at=$12, user_pack_id=$13;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.UserID, p.PackID, p.Provider, p.Amount, p.Currency, p.Authority, p.RefID, p.Status, p.CreatedAt, p.UpdatedAt, p.PaidAt, p.UserPackID)
	return normalizeErr(err)
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1;`
	return r.queryOne(ctx, tx, q, id)
}

func (r *paymentRepo) FindByAuthority(ctx context.Context, tx repository.Tx, authority string) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE authority=$1 ORDER BY created_at DESC LIMIT 1;`
	return r.queryOne(ctx, tx, q, authority)
}

func (r *paymentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, refID *string, userPackID *string) error {
	const q = `
UPDATE payments
   SET status=$2,
       ref_id=COALESCE($3, ref_id),
       user_pack_id=COALESCE($4, user_pack_id),
       paid_at=CASE WHEN $2='succeeded' THEN NOW() ELSE paid_at END,
       updated_at=NOW()
 WHERE id=$1;`

	tag, err := execSQL(ctx, r.pool, tx, q, id, status, refID, userPackID)
	if err != nil {
		return normalizeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *paymentRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	var interval string
	switch period {
	case "week":
		interval = "7 days"
	case "month":
		interval = "1 month"
	case "year":
		interval = "1 year"
	default:
		return 0, domain.ErrInvalidArgument
	}
	q := `SELECT COALESCE(SUM(amount_cents),0) FROM payments WHERE status='succeeded' AND paid_at >= NOW() - INTERVAL '` + interval + `';`
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

func (r *paymentRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Payment, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, normalizeErr(err)
	}
	var p model.Payment
	if err := row.Scan(&p.ID, &p.UserID, &p.PackID, &p.Provider, &p.Amount, &p.Currency, &p.Authority, &p.RefID, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.PaidAt, &p.UserPackID); err != nil {
		return nil, normalizeErr(err)
	}
	return &p, nil
}
