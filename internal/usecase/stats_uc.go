package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"tax-filing-service/internal/domain/model"
	"tax-filing-service/internal/domain/ports/repository"
	"tax-filing-service/internal/infra/metrics"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	// Totals returns submissions by status, ledger entries by pack, and the
	// total remaining submission quota across all users.
	Totals(ctx context.Context) (byStatus map[model.SubmissionStatus]int, byPack map[string]int, remaining int64, err error)
	Revenue(ctx context.Context) (week int64, month int64, year int64, err error)
}

type statsUC struct {
	subs     repository.SubmissionRepository
	ledger   repository.UserPackRepository
	payments repository.PaymentRepository

	log *zerolog.Logger
}

func NewStatsUseCase(subs repository.SubmissionRepository, ledger repository.UserPackRepository, payments repository.PaymentRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{subs: subs, ledger: ledger, payments: payments, log: logger}
}

func (s *statsUC) Totals(ctx context.Context) (map[model.SubmissionStatus]int, map[string]int, int64, error) {
	byStatus, err := s.subs.CountByStatus(ctx, repository.NoTX)
	if err != nil {
		return nil, nil, 0, err
	}
	byPack, err := s.ledger.CountByPack(ctx, repository.NoTX)
	if err != nil {
		return nil, nil, 0, err
	}
	remaining, err := s.ledger.TotalRemaining(ctx, repository.NoTX)
	if err != nil {
		return nil, nil, 0, err
	}
	metrics.SetSubmissionsByStatus(byStatus)
	metrics.SetQuotaRemaining(remaining)
	return byStatus, byPack, remaining, nil
}

func (s *statsUC) Revenue(ctx context.Context) (int64, int64, int64, error) {
	w, err := s.payments.SumByPeriod(ctx, repository.NoTX, "week")
	if err != nil {
		return 0, 0, 0, err
	}
	m, err := s.payments.SumByPeriod(ctx, repository.NoTX, "month")
	if err != nil {
		return 0, 0, 0, err
	}
	y, err := s.payments.SumByPeriod(ctx, repository.NoTX, "year")
	if err != nil {
		return 0, 0, 0, err
	}
	return w, m, y, nil
}
