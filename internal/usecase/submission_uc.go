package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"tax-filing-service/internal/domain"
	"tax-filing-service/internal/domain/model"
	"tax-filing-service/internal/domain/ports/adapter"
	"tax-filing-service/internal/domain/ports/repository"
	"tax-filing-service/internal/infra/metrics"
	"tax-filing-service/internal/infra/worker"

	"github.com/google/uuid"
)

const calcLockTTL = 5 * time.Minute

// Compile-time check
var _ SubmissionUseCase = (*submissionUC)(nil)

// SubmissionUseCase drives a submission through its lifecycle:
// draft -> processing -> complete, with processing kept as the resting state
// for manual review when the external processor fails.
type SubmissionUseCase interface {
	// Create allocates quota from the ledger and creates a draft submission.
	// Allocation and consumption happen in one transaction with the insert:
	// a submission never exists without a consumed ledger unit.
	Create(ctx context.Context, userID, title, submissionType, fiscalNumber string, year int, wantsPremium bool) (*model.Submission, error)
	// Calculate hands the submission to the external processor. The
	// processing status is persisted before the remote call so a crash
	// leaves an inspectable record. Manual re-invocation on a processing
	// submission re-runs the call; there is no automatic retry.
	Calculate(ctx context.Context, submissionID string) (*model.Submission, error)
	Get(ctx context.Context, id string) (*model.Submission, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Submission, error)
	LatestResult(ctx context.Context, submissionID string) (*model.SubmissionResult, error)
}

type submissionUC struct {
	subs      repository.SubmissionRepository
	files     repository.SubmissionFileRepository
	results   repository.SubmissionResultRepository
	allocator UserPackUseCase
	processor adapter.TaxProcessor
	notifier  adapter.Notifier
	dispatch  *worker.Pool
	locker    adapter.Locker
	txm       repository.TransactionManager

	log *zerolog.Logger
}

func NewSubmissionUseCase(
	subs repository.SubmissionRepository,
	files repository.SubmissionFileRepository,
	results repository.SubmissionResultRepository,
	allocator UserPackUseCase,
	processor adapter.TaxProcessor,
	notifier adapter.Notifier,
	dispatch *worker.Pool,
	locker adapter.Locker,
	txm repository.TransactionManager,
	logger *zerolog.Logger,
) *submissionUC {
	return &submissionUC{
		subs:      subs,
		files:     files,
		results:   results,
		allocator: allocator,
		processor: processor,
		notifier:  notifier,
		dispatch:  dispatch,
		locker:    locker,
		txm:       txm,
		log:       logger,
	}
}

func newSubmissionID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

func (uc *submissionUC) Create(ctx context.Context, userID, title, submissionType, fiscalNumber string, year int, wantsPremium bool) (*model.Submission, error) {
	var created *model.Submission

	err := uc.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		up, err := uc.allocator.SelectUserPack(ctx, tx, userID, wantsPremium)
		if err != nil {
			return err
		}
		// Consume before inserting: if the last unit was raced away the
		// conflict aborts here and no submission row is ever written.
		if err := uc.allocator.Consume(ctx, tx, up.ID); err != nil {
			return err
		}
		s, err := model.NewSubmission(newSubmissionID(), userID, up, title, submissionType, fiscalNumber, year)
		if err != nil {
			return err
		}
		if err := uc.subs.Save(ctx, tx, s); err != nil {
			return err
		}
		created = s
		return nil
	})
	if err != nil {
		if err == domain.ErrQuotaExhausted {
			uc.log.Info().Str("user_id", userID).Bool("premium", wantsPremium).Msg("submission rejected: no quota")
		}
		return nil, err
	}

	metrics.IncSubmissionsCreated(string(created.Tier))
	uc.log.Info().Str("submission_id", created.ID).Str("user_id", userID).Str("tier", string(created.Tier)).Msg("submission created")
	return created, nil
}

func (uc *submissionUC) Calculate(ctx context.Context, submissionID string) (*model.Submission, error) {
	s, err := uc.subs.FindByID(ctx, repository.NoTX, submissionID)
	if err != nil {
		return nil, err
	}
	if !s.CanCalculate() {
		return nil, domain.ErrInvalidTransition
	}

	// Upfront validation. These parameters cannot become valid by retrying,
	// so this is the only path that moves a submission to failed.
	if verr := uc.validateForCalculation(s); verr != nil {
		if err := uc.subs.TransitionStatus(ctx, repository.NoTX, s.ID,
			[]model.SubmissionStatus{model.SubmissionStatusDraft, model.SubmissionStatusProcessing},
			model.SubmissionStatusFailed); err != nil {
			return nil, err
		}
		s.Status = model.SubmissionStatusFailed
		metrics.IncSubmissionTransition(string(model.SubmissionStatusFailed))
		uc.notifyOperators(adapter.EventValidationFailed, s, verr.Error())
		return s, verr
	}

	token, err := uc.locker.TryLock(ctx, "calc_lock:"+s.ID, calcLockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if uerr := uc.locker.Unlock(context.Background(), "calc_lock:"+s.ID, token); uerr != nil {
			uc.log.Warn().Err(uerr).Str("submission_id", s.ID).Msg("calc lock release failed")
		}
	}()

	// Persist processing before the remote call.
	if err := uc.subs.TransitionStatus(ctx, repository.NoTX, s.ID,
		[]model.SubmissionStatus{model.SubmissionStatusDraft, model.SubmissionStatusProcessing},
		model.SubmissionStatusProcessing); err != nil {
		return nil, err
	}
	s.Status = model.SubmissionStatusProcessing

	res, callErr := uc.callProcessor(ctx, s)
	if callErr != nil {
		// Transport-level failure: no payload to store. The submission stays
		// in processing so a paid case is never silently lost.
		uc.notifyOperators(adapter.EventStuckProcessing, s, callErr.Error())
		return s, fmt.Errorf("%w: %v", domain.ErrProcessorFailure, callErr)
	}

	// Store whatever the processor returned, success or not.
	result, err := model.NewSubmissionResult(uuid.NewString(), s.ID, res.RawPayload)
	if err != nil {
		return nil, err
	}
	if err := uc.results.Append(ctx, repository.NoTX, result); err != nil {
		return nil, err
	}

	if !res.Succeeded() {
		uc.notifyOperators(adapter.EventStuckProcessing, s, res.ErrorMessage)
		return s, fmt.Errorf("%w: %s", domain.ErrProcessorFailure, res.ErrorMessage)
	}

	if err := uc.subs.TransitionStatus(ctx, repository.NoTX, s.ID,
		[]model.SubmissionStatus{model.SubmissionStatusProcessing},
		model.SubmissionStatusComplete); err != nil {
		return nil, err
	}
	s.Status = model.SubmissionStatusComplete
	metrics.IncSubmissionTransition(string(model.SubmissionStatusComplete))
	uc.log.Info().Str("submission_id", s.ID).Msg("calculation complete")
	return s, nil
}

func (uc *submissionUC) validateForCalculation(s *model.Submission) error {
	if s.FiscalNumber == "" {
		return fmt.Errorf("%w: fiscal number is required", domain.ErrInvalidArgument)
	}
	if s.Year < 2000 || s.Year > time.Now().Year() {
		return fmt.Errorf("%w: year %d out of range", domain.ErrInvalidArgument, s.Year)
	}
	return nil
}

func (uc *submissionUC) callProcessor(ctx context.Context, s *model.Submission) (adapter.CalculationResult, error) {
	req := adapter.CalculationRequest{
		UserID:         s.UserID,
		SubmissionID:   s.ID,
		SubmissionType: s.SubmissionType,
		FiscalNumber:   s.FiscalNumber,
		Year:           s.Year,
		BaseIrsPath:    s.BaseIrsPath,
		Premium:        s.Tier == model.TierPremium,
	}
	start := time.Now()
	res, err := uc.processor.CalculateTaxes(ctx, req)
	metrics.ObserveProcessorCall("calculate", time.Since(start), err == nil && res.Succeeded())
	return res, err
}

// notifyOperators pushes the event to the operator channel without ever
// blocking or failing the calling operation.
func (uc *submissionUC) notifyOperators(event adapter.OperatorEvent, s *model.Submission, detail string) {
	task := func(ctx context.Context) error {
		return uc.notifier.NotifySubmission(ctx, event, s.ID, s.UserID, detail)
	}
	if uc.dispatch != nil {
		if err := uc.dispatch.Submit(task); err == nil {
			return
		}
	}
	if err := task(context.Background()); err != nil {
		uc.log.Warn().Err(err).Str("submission_id", s.ID).Str("event", string(event)).Msg("operator notification failed")
	}
}

func (uc *submissionUC) Get(ctx context.Context, id string) (*model.Submission, error) {
	return uc.subs.FindByID(ctx, repository.NoTX, id)
}

func (uc *submissionUC) ListByUser(ctx context.Context, userID string) ([]*model.Submission, error) {
	return uc.subs.FindByUser(ctx, repository.NoTX, userID)
}

func (uc *submissionUC) LatestResult(ctx context.Context, submissionID string) (*model.SubmissionResult, error) {
	return uc.results.FindLatest(ctx, repository.NoTX, submissionID)
}
