//go:build !integration

package web

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"tax-filing-service/internal/domain"
	"tax-filing-service/internal/domain/model"
	"tax-filing-service/internal/domain/ports/adapter"
	"tax-filing-service/internal/domain/ports/repository"
)

// --- Mock Repositories (Ports) ---

type mockPackRepo struct {
	repository.PackRepository // Embed interface for forward compatibility
	mu                        sync.Mutex
	packs                     []*model.Pack
}

func (m *mockPackRepo) Save(ctx context.Context, tx repository.Tx, p *model.Pack) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.packs {
		if e.ID == p.ID {
			m.packs[i] = p
			return nil
		}
	}
	m.packs = append(m.packs, p)
	return nil
}

func (m *mockPackRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Pack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.packs {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockPackRepo) FindFree(ctx context.Context, tx repository.Tx) (*model.Pack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.packs {
		if p.PriceCents == 0 && p.IsActive {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockPackRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Pack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Pack(nil), m.packs...), nil
}

func (m *mockPackRepo) ListPurchasable(ctx context.Context, tx repository.Tx) ([]*model.Pack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Pack
	for _, p := range m.packs {
		if p.Purchasable() {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockLedgerRepo struct {
	repository.UserPackRepository
	mu      sync.Mutex
	entries []*model.UserPack
}

func (m *mockLedgerRepo) Save(ctx context.Context, tx repository.Tx, up *model.UserPack) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, up)
	return nil
}

func (m *mockLedgerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserPack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockLedgerRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string, includeExhausted bool) ([]*model.UserPack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.UserPack
	for _, e := range m.entries {
		if e.UserID != userID {
			continue
		}
		if !includeExhausted && e.Exhausted() {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockLedgerRepo) FindByUserAndPack(ctx context.Context, tx repository.Tx, userID, packID string) ([]*model.UserPack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.UserPack
	for _, e := range m.entries {
		if e.UserID == userID && e.PackID == packID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockLedgerRepo) ConsumeUnit(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			if e.SubmissionsRemaining <= 0 {
				return domain.ErrConflict
			}
			e.SubmissionsRemaining--
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockLedgerRepo) TotalRemaining(ctx context.Context, tx repository.Tx) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, e := range m.entries {
		total += int64(e.SubmissionsRemaining)
	}
	return total, nil
}

func (m *mockLedgerRepo) CountByPack(ctx context.Context, tx repository.Tx) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int)
	for _, e := range m.entries {
		out[e.PackID]++
	}
	return out, nil
}

type mockSubmissionRepo struct {
	repository.SubmissionRepository
	mu   sync.Mutex
	subs []*model.Submission
}

func (m *mockSubmissionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.subs {
		if e.ID == s.ID {
			m.subs[i] = s
			return nil
		}
	}
	m.subs = append(m.subs, s)
	return nil
}

func (m *mockSubmissionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockSubmissionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Submission
	for _, s := range m.subs {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockSubmissionRepo) TransitionStatus(ctx context.Context, tx repository.Tx, id string, from []model.SubmissionStatus, to model.SubmissionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.ID != id {
			continue
		}
		for _, f := range from {
			if s.Status == f {
				s.Status = to
				return nil
			}
		}
		return domain.ErrInvalidTransition
	}
	return domain.ErrNotFound
}

func (m *mockSubmissionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubmissionStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[model.SubmissionStatus]int)
	for _, s := range m.subs {
		out[s.Status]++
	}
	return out, nil
}

type mockFileRepo struct {
	repository.SubmissionFileRepository
	mu    sync.Mutex
	files []*model.SubmissionFile
}

func (m *mockFileRepo) SaveBatch(ctx context.Context, tx repository.Tx, files []*model.SubmissionFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, files...)
	return nil
}

func (m *mockFileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubmissionFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.files {
		if f.ID == id {
			cp := *f
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockFileRepo) FindBySubmission(ctx context.Context, tx repository.Tx, submissionID string) ([]*model.SubmissionFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.SubmissionFile
	for _, f := range m.files {
		if f.SubmissionID == submissionID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockFileRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, f := range m.files {
		if f.ID == id {
			m.files = append(m.files[:i], m.files[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockFileRepo) DeleteBySubmissionAndBroker(ctx context.Context, tx repository.Tx, submissionID, brokerName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keep []*model.SubmissionFile
	for _, f := range m.files {
		if f.SubmissionID == submissionID && f.BrokerName == brokerName {
			continue
		}
		keep = append(keep, f)
	}
	m.files = keep
	return nil
}

type mockResultRepo struct {
	repository.SubmissionResultRepository
	mu      sync.Mutex
	results []*model.SubmissionResult
}

func (m *mockResultRepo) Append(ctx context.Context, tx repository.Tx, r *model.SubmissionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	return nil
}

func (m *mockResultRepo) FindLatest(ctx context.Context, tx repository.Tx, submissionID string) (*model.SubmissionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.results) - 1; i >= 0; i-- {
		if m.results[i].SubmissionID == submissionID {
			return m.results[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

type mockPaymentRepo struct {
	repository.PaymentRepository
	mu       sync.Mutex
	payments []*model.Payment
}

func (m *mockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, p)
	return nil
}

func (m *mockPaymentRepo) FindByAuthority(ctx context.Context, tx repository.Tx, authority string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.Authority == authority {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, refID *string, userPackID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ID == id {
			p.Status = status
			if refID != nil {
				p.RefID = *refID
			}
			if userPackID != nil {
				p.UserPackID = userPackID
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockPaymentRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, p := range m.payments {
		if p.Status == model.PaymentStatusSucceeded {
			sum += p.Amount
		}
	}
	return sum, nil
}

// --- Mock Adapters ---

type mockProcessor struct {
	adapter.TaxProcessor
	mu            sync.Mutex
	deletedFiles  []string // "<userID>/<fileName>" per remote file delete
	deletedBroker []string // "<userID>/<brokerID>" per remote broker delete

	CalculateTaxesFunc func(ctx context.Context, req adapter.CalculationRequest) (adapter.CalculationResult, error)
	UploadFilesFunc    func(ctx context.Context, userID, brokerID string, files []adapter.BrokerUpload) ([]adapter.UploadOutcome, error)
	DeleteFileFunc     func(ctx context.Context, userID, brokerID, fileType, fileName string) error
	DeleteAllFilesFunc func(ctx context.Context, userID, brokerID string) error
}

func (m *mockProcessor) Name() string { return "mock" }

func (m *mockProcessor) CalculateTaxes(ctx context.Context, req adapter.CalculationRequest) (adapter.CalculationResult, error) {
	if m.CalculateTaxesFunc != nil {
		return m.CalculateTaxesFunc(ctx, req)
	}
	return adapter.CalculationResult{Status: "ok", RawPayload: []byte(`{"tax_due":100}`)}, nil
}

func (m *mockProcessor) UploadFiles(ctx context.Context, userID, brokerID string, files []adapter.BrokerUpload) ([]adapter.UploadOutcome, error) {
	if m.UploadFilesFunc != nil {
		return m.UploadFilesFunc(ctx, userID, brokerID, files)
	}
	out := make([]adapter.UploadOutcome, len(files))
	for i, f := range files {
		out[i] = adapter.UploadOutcome{FileName: f.FileName, Path: "stored/" + f.FileName, DocumentType: "trades"}
	}
	return out, nil
}

func (m *mockProcessor) DeleteFile(ctx context.Context, userID, brokerID, fileType, fileName string) error {
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, userID, brokerID, fileType, fileName)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedFiles = append(m.deletedFiles, userID+"/"+fileName)
	return nil
}

func (m *mockProcessor) DeleteAllFiles(ctx context.Context, userID, brokerID string) error {
	if m.DeleteAllFilesFunc != nil {
		return m.DeleteAllFilesFunc(ctx, userID, brokerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedBroker = append(m.deletedBroker, userID+"/"+brokerID)
	return nil
}

func (m *mockProcessor) ListSupportedBrokers(ctx context.Context) ([]string, error) {
	return []string{"degiro", "ibkr"}, nil
}

type mockNotifier struct{}

func (mockNotifier) NotifySubmission(ctx context.Context, event adapter.OperatorEvent, submissionID, userID, detail string) error {
	return nil
}

type mockLocker struct{}

func (mockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "tok", nil
}
func (mockLocker) Unlock(ctx context.Context, key, token string) error { return nil }

type mockGateway struct{}

func (mockGateway) Name() string { return "mock-gateway" }
func (mockGateway) RequestPayment(ctx context.Context, amountCents int64, description, callbackURL string) (string, string, error) {
	return "auth-1", "https://pay.example/auth-1", nil
}
func (mockGateway) VerifyPayment(ctx context.Context, authority string, expectedAmountCents int64) (string, error) {
	return "ref-1", nil
}

type mockCache struct {
	mu      sync.Mutex
	brokers []string
}

func (m *mockCache) Get(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.brokers) == 0 {
		return nil, domain.ErrNotFound
	}
	return m.brokers, nil
}

func (m *mockCache) Set(ctx context.Context, brokers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.brokers = brokers
	return nil
}

type mockTxManager struct{}

func (mockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}
