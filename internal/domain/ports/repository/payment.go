package repository

import (
	"context"

	"tax-filing-service/internal/domain/model"
)

// PaymentRepository is the port for checkout records.
type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByAuthority(ctx context.Context, tx Tx, authority string) (*model.Payment, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.PaymentStatus, refID *string, userPackID *string) error

	// SumByPeriod sums succeeded payment amounts for "week" | "month" | "year".
	SumByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}
