//go:build !integration

package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"tax-filing-service/internal/domain"
	"tax-filing-service/internal/domain/model"
	"tax-filing-service/internal/domain/ports/adapter"
	"tax-filing-service/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

// =============================
// Repositories
// =============================

// ---- Mock PackRepository ----

type MockPackRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Pack

	SaveFunc func(ctx context.Context, tx repository.Tx, p *model.Pack) error
}

var _ repository.PackRepository = (*MockPackRepo)(nil)

func NewMockPackRepo() *MockPackRepo {
	return &MockPackRepo{store: make(map[string]*model.Pack)}
}

func (m *MockPackRepo) Save(ctx context.Context, tx repository.Tx, p *model.Pack) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPackRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Pack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPackRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Pack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPackRepo) FindFree(ctx context.Context, tx repository.Tx) (*model.Pack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.PriceCents == 0 && p.IsActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPackRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Pack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Pack, 0, len(m.store))
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockPackRepo) ListPurchasable(ctx context.Context, tx repository.Tx) ([]*model.Pack, error) {
	all, _ := m.ListAll(ctx, tx)
	var out []*model.Pack
	for _, p := range all {
		if p.Purchasable() {
			out = append(out, p)
		}
	}
	return out, nil
}

// ---- Mock UserPackRepository ----

type MockUserPackRepo struct {
	mu    sync.RWMutex
	store map[string]*model.UserPack
	order []string // insertion order stands in for created_at ordering

	ConsumeUnitFunc       func(ctx context.Context, tx repository.Tx, id string) error
	FindByUserAndPackFunc func(ctx context.Context, tx repository.Tx, userID, packID string) ([]*model.UserPack, error)
}

var _ repository.UserPackRepository = (*MockUserPackRepo)(nil)

func NewMockUserPackRepo() *MockUserPackRepo {
	return &MockUserPackRepo{store: make(map[string]*model.UserPack)}
}

func (m *MockUserPackRepo) Save(ctx context.Context, tx repository.Tx, up *model.UserPack) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[up.ID]; !ok {
		m.order = append(m.order, up.ID)
	}
	cp := *up
	m.store[up.ID] = &cp
	return nil
}

func (m *MockUserPackRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserPack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	up, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *up
	return &cp, nil
}

func (m *MockUserPackRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string, includeExhausted bool) ([]*model.UserPack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.UserPack
	for _, id := range m.order {
		up := m.store[id]
		if up.UserID != userID {
			continue
		}
		if !includeExhausted && up.Exhausted() {
			continue
		}
		cp := *up
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockUserPackRepo) FindByUserAndPack(ctx context.Context, tx repository.Tx, userID, packID string) ([]*model.UserPack, error) {
	if m.FindByUserAndPackFunc != nil {
		return m.FindByUserAndPackFunc(ctx, tx, userID, packID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.UserPack
	for _, id := range m.order {
		up := m.store[id]
		if up.UserID == userID && up.PackID == packID {
			cp := *up
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockUserPackRepo) ConsumeUnit(ctx context.Context, tx repository.Tx, id string) error {
	if m.ConsumeUnitFunc != nil {
		return m.ConsumeUnitFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	up, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if up.SubmissionsRemaining <= 0 {
		return domain.ErrConflict
	}
	up.SubmissionsRemaining--
	up.UpdatedAt = time.Now()
	return nil
}

func (m *MockUserPackRepo) TotalRemaining(ctx context.Context, tx repository.Tx) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, up := range m.store {
		total += int64(up.SubmissionsRemaining)
	}
	return total, nil
}

func (m *MockUserPackRepo) CountByPack(ctx context.Context, tx repository.Tx) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int)
	for _, up := range m.store {
		out[up.PackID]++
	}
	return out, nil
}

// ---- Mock SubmissionRepository ----

type MockSubmissionRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Submission
	order []string

	SaveFunc             func(ctx context.Context, tx repository.Tx, s *model.Submission) error
	TransitionStatusFunc func(ctx context.Context, tx repository.Tx, id string, from []model.SubmissionStatus, to model.SubmissionStatus) error
}

var _ repository.SubmissionRepository = (*MockSubmissionRepo)(nil)

func NewMockSubmissionRepo() *MockSubmissionRepo {
	return &MockSubmissionRepo{store: make(map[string]*model.Submission)}
}

func (m *MockSubmissionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Submission) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[s.ID]; !ok {
		m.order = append(m.order, s.ID)
	}
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *MockSubmissionRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MockSubmissionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSubmissionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Submission
	for _, id := range m.order {
		if s, ok := m.store[id]; ok && s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockSubmissionRepo) TransitionStatus(ctx context.Context, tx repository.Tx, id string, from []model.SubmissionStatus, to model.SubmissionStatus) error {
	if m.TransitionStatusFunc != nil {
		return m.TransitionStatusFunc(ctx, tx, id, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, f := range from {
		if s.Status == f {
			s.Status = to
			s.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrInvalidTransition
}

func (m *MockSubmissionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubmissionStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.SubmissionStatus]int)
	for _, s := range m.store {
		out[s.Status]++
	}
	return out, nil
}

// ---- Mock SubmissionFileRepository ----

type MockSubmissionFileRepo struct {
	mu    sync.RWMutex
	store map[string]*model.SubmissionFile
	order []string

	SaveBatchFunc func(ctx context.Context, tx repository.Tx, files []*model.SubmissionFile) error
	DeleteFunc    func(ctx context.Context, tx repository.Tx, id string) error
}

var _ repository.SubmissionFileRepository = (*MockSubmissionFileRepo)(nil)

func NewMockSubmissionFileRepo() *MockSubmissionFileRepo {
	return &MockSubmissionFileRepo{store: make(map[string]*model.SubmissionFile)}
}

func (m *MockSubmissionFileRepo) SaveBatch(ctx context.Context, tx repository.Tx, files []*model.SubmissionFile) error {
	if m.SaveBatchFunc != nil {
		return m.SaveBatchFunc(ctx, tx, files)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range files {
		if _, ok := m.store[f.ID]; !ok {
			m.order = append(m.order, f.ID)
		}
		cp := *f
		m.store[f.ID] = &cp
	}
	return nil
}

func (m *MockSubmissionFileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubmissionFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *MockSubmissionFileRepo) FindBySubmission(ctx context.Context, tx repository.Tx, submissionID string) ([]*model.SubmissionFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.SubmissionFile
	for _, id := range m.order {
		if f, ok := m.store[id]; ok && f.SubmissionID == submissionID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockSubmissionFileRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MockSubmissionFileRepo) DeleteBySubmissionAndBroker(ctx context.Context, tx repository.Tx, submissionID, brokerName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, f := range m.store {
		if f.SubmissionID == submissionID && f.BrokerName == brokerName {
			delete(m.store, id)
		}
	}
	return nil
}

// ---- Mock SubmissionResultRepository ----

type MockSubmissionResultRepo struct {
	mu      sync.RWMutex
	results []*model.SubmissionResult

	AppendFunc func(ctx context.Context, tx repository.Tx, r *model.SubmissionResult) error
}

var _ repository.SubmissionResultRepository = (*MockSubmissionResultRepo)(nil)

func NewMockSubmissionResultRepo() *MockSubmissionResultRepo {
	return &MockSubmissionResultRepo{}
}

func (m *MockSubmissionResultRepo) Append(ctx context.Context, tx repository.Tx, r *model.SubmissionResult) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.results = append(m.results, &cp)
	return nil
}

func (m *MockSubmissionResultRepo) FindLatest(ctx context.Context, tx repository.Tx, submissionID string) (*model.SubmissionResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.results) - 1; i >= 0; i-- {
		if m.results[i].SubmissionID == submissionID {
			cp := *m.results[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubmissionResultRepo) ListBySubmission(ctx context.Context, tx repository.Tx, submissionID string) ([]*model.SubmissionResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.SubmissionResult
	for _, r := range m.results {
		if r.SubmissionID == submissionID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock PaymentRepository ----

type MockPaymentRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Payment

	SaveFunc         func(ctx context.Context, tx repository.Tx, p *model.Payment) error
	UpdateStatusFunc func(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, refID *string, userPackID *string) error
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{store: make(map[string]*model.Payment)}
}

func (m *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentRepo) FindByAuthority(ctx context.Context, tx repository.Tx, authority string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.Authority == authority {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPaymentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, refID *string, userPackID *string) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, refID, userPackID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	if refID != nil {
		p.RefID = *refID
	}
	if userPackID != nil {
		p.UserPackID = userPackID
	}
	if status == model.PaymentStatusSucceeded && p.PaidAt == nil {
		now := time.Now()
		p.PaidAt = &now
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (m *MockPaymentRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	switch period {
	case "week", "month", "year":
	default:
		return 0, domain.ErrInvalidArgument
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, p := range m.store {
		if p.Status == model.PaymentStatusSucceeded {
			sum += p.Amount
		}
	}
	return sum, nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Adapters
// =============================

// ---- Mock TaxProcessor ----

type MockProcessor struct {
	mu sync.Mutex

	UploadFilesFunc    func(ctx context.Context, userID, brokerID string, files []adapter.BrokerUpload) ([]adapter.UploadOutcome, error)
	DeleteFileFunc     func(ctx context.Context, userID, brokerID, fileType, fileName string) error
	DeleteAllFilesFunc func(ctx context.Context, userID, brokerID string) error
	CalculateTaxesFunc func(ctx context.Context, req adapter.CalculationRequest) (adapter.CalculationResult, error)
	ListBrokersFunc    func(ctx context.Context) ([]string, error)

	Calls struct {
		Upload      int
		DeleteFile  int
		DeleteAll   int
		Calculate   []adapter.CalculationRequest
		ListBrokers int
	}
}

var _ adapter.TaxProcessor = (*MockProcessor)(nil)

func (m *MockProcessor) Name() string { return "mock-processor" }

func (m *MockProcessor) UploadFiles(ctx context.Context, userID, brokerID string, files []adapter.BrokerUpload) ([]adapter.UploadOutcome, error) {
	m.mu.Lock()
	m.Calls.Upload++
	m.mu.Unlock()
	if m.UploadFilesFunc != nil {
		return m.UploadFilesFunc(ctx, userID, brokerID, files)
	}
	out := make([]adapter.UploadOutcome, len(files))
	for i, f := range files {
		out[i] = adapter.UploadOutcome{FileName: f.FileName, Path: "stored/" + f.FileName, DocumentType: "trades"}
	}
	return out, nil
}

func (m *MockProcessor) DeleteFile(ctx context.Context, userID, brokerID, fileType, fileName string) error {
	m.mu.Lock()
	m.Calls.DeleteFile++
	m.mu.Unlock()
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, userID, brokerID, fileType, fileName)
	}
	return nil
}

func (m *MockProcessor) DeleteAllFiles(ctx context.Context, userID, brokerID string) error {
	m.mu.Lock()
	m.Calls.DeleteAll++
	m.mu.Unlock()
	if m.DeleteAllFilesFunc != nil {
		return m.DeleteAllFilesFunc(ctx, userID, brokerID)
	}
	return nil
}

func (m *MockProcessor) CalculateTaxes(ctx context.Context, req adapter.CalculationRequest) (adapter.CalculationResult, error) {
	m.mu.Lock()
	m.Calls.Calculate = append(m.Calls.Calculate, req)
	m.mu.Unlock()
	if m.CalculateTaxesFunc != nil {
		return m.CalculateTaxesFunc(ctx, req)
	}
	return adapter.CalculationResult{Status: "ok", RawPayload: []byte(`{"tax_due":0}`)}, nil
}

func (m *MockProcessor) ListSupportedBrokers(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	m.Calls.ListBrokers++
	m.mu.Unlock()
	if m.ListBrokersFunc != nil {
		return m.ListBrokersFunc(ctx)
	}
	return []string{"degiro", "ibkr"}, nil
}

// ---- Mock Notifier ----

type notifiedEvent struct {
	Event        adapter.OperatorEvent
	SubmissionID string
	Detail       string
}

type MockNotifier struct {
	mu     sync.Mutex
	Events []notifiedEvent

	NotifyFunc func(ctx context.Context, event adapter.OperatorEvent, submissionID, userID, detail string) error
}

var _ adapter.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) NotifySubmission(ctx context.Context, event adapter.OperatorEvent, submissionID, userID, detail string) error {
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, event, submissionID, userID, detail)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, notifiedEvent{Event: event, SubmissionID: submissionID, Detail: detail})
	return nil
}

func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events)
}

// ---- Mock Locker ----

type MockLocker struct {
	mu   sync.Mutex
	held map[string]string

	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)
}

var _ adapter.Locker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker { return &MockLocker{held: make(map[string]string)} }

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx, key, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[key]; ok {
		return "", domain.ErrCalculationLocked
	}
	m.held[key] = "tok"
	return "tok", nil
}

func (m *MockLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
	return nil
}

// ---- Mock PaymentGateway ----

type MockPaymentGateway struct {
	RequestPaymentFunc func(ctx context.Context, amountCents int64, description, callbackURL string) (string, string, error)
	VerifyPaymentFunc  func(ctx context.Context, authority string, expectedAmountCents int64) (string, error)
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string { return "mock-gateway" }

func (m *MockPaymentGateway) RequestPayment(ctx context.Context, amountCents int64, description, callbackURL string) (string, string, error) {
	if m.RequestPaymentFunc != nil {
		return m.RequestPaymentFunc(ctx, amountCents, description, callbackURL)
	}
	return "auth-1", "https://pay.example/auth-1", nil
}

func (m *MockPaymentGateway) VerifyPayment(ctx context.Context, authority string, expectedAmountCents int64) (string, error) {
	if m.VerifyPaymentFunc != nil {
		return m.VerifyPaymentFunc(ctx, authority, expectedAmountCents)
	}
	return "ref-1", nil
}

// ---- Mock BrokerCache ----

type MockBrokerCache struct {
	mu      sync.Mutex
	brokers []string

	GetFunc func(ctx context.Context) ([]string, error)
	SetFunc func(ctx context.Context, brokers []string) error
}

func (m *MockBrokerCache) Get(ctx context.Context) ([]string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.brokers) == 0 {
		return nil, domain.ErrNotFound
	}
	return append([]string(nil), m.brokers...), nil
}

func (m *MockBrokerCache) Set(ctx context.Context, brokers []string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, brokers)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.brokers = append([]string(nil), brokers...)
	return nil
}
