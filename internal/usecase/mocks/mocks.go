package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/isobridge/internal/domain"
	"github.com/iho/isobridge/internal/usecase"
)

// MockSettlementRepository is a mock implementation of SettlementRepository.
type MockSettlementRepository struct {
	mu      sync.RWMutex
	byUETR  map[string]*domain.RecordedSettlement
	byHash  map[string]*domain.RecordedSettlement
	records []*domain.RecordedSettlement

	CreateTxFunc             func(ctx context.Context, tx usecase.Transaction, fact *domain.SettlementFact, ref domain.TransactionReference) error
	GetByUETRFunc            func(ctx context.Context, uetr string) (*domain.RecordedSettlement, error)
	GetByTxHashFunc          func(ctx context.Context, hash string) (*domain.RecordedSettlement, error)
	ListByPartyFunc          func(ctx context.Context, party string, from, to time.Time, limit, offset int) ([]*domain.RecordedSettlement, error)
	SumInstructedByPartyFunc func(ctx context.Context, party, currency string, before time.Time) (decimal.Decimal, error)
}

func NewMockSettlementRepository() *MockSettlementRepository {
	return &MockSettlementRepository{
		byUETR: make(map[string]*domain.RecordedSettlement),
		byHash: make(map[string]*domain.RecordedSettlement),
	}
}

func (m *MockSettlementRepository) CreateTx(ctx context.Context, tx usecase.Transaction, fact *domain.SettlementFact, ref domain.TransactionReference) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, fact, ref)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byHash[fact.LedgerTxHash]; ok {
		return domain.ErrDuplicateSettlement
	}
	rec := &domain.RecordedSettlement{Fact: *fact, Reference: ref}
	m.byUETR[ref.UETR] = rec
	m.byHash[fact.LedgerTxHash] = rec
	m.records = append(m.records, rec)
	return nil
}

func (m *MockSettlementRepository) GetByUETR(ctx context.Context, uetr string) (*domain.RecordedSettlement, error) {
	if m.GetByUETRFunc != nil {
		return m.GetByUETRFunc(ctx, uetr)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.byUETR[uetr]; ok {
		return rec, nil
	}
	return nil, domain.ErrSettlementNotFound
}

func (m *MockSettlementRepository) GetByTxHash(ctx context.Context, hash string) (*domain.RecordedSettlement, error) {
	if m.GetByTxHashFunc != nil {
		return m.GetByTxHashFunc(ctx, hash)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.byHash[hash]; ok {
		return rec, nil
	}
	return nil, domain.ErrSettlementNotFound
}

func (m *MockSettlementRepository) ListByParty(ctx context.Context, party string, from, to time.Time, limit, offset int) ([]*domain.RecordedSettlement, error) {
	if m.ListByPartyFunc != nil {
		return m.ListByPartyFunc(ctx, party, from, to, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.RecordedSettlement
	for _, rec := range m.records {
		if rec.Fact.SourceParty != party && rec.Fact.BeneficiaryParty != party {
			continue
		}
		if rec.Fact.LedgerCloseTime.Before(from) || rec.Fact.LedgerCloseTime.After(to) {
			continue
		}
		matched = append(matched, rec)
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *MockSettlementRepository) SumInstructedByParty(ctx context.Context, party, currency string, before time.Time) (decimal.Decimal, error) {
	if m.SumInstructedByPartyFunc != nil {
		return m.SumInstructedByPartyFunc(ctx, party, currency, before)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, rec := range m.records {
		if rec.Fact.SourceParty != party && rec.Fact.BeneficiaryParty != party {
			continue
		}
		if rec.Fact.InstructedCurrency != currency || rec.Fact.Status != domain.SettlementConfirmed {
			continue
		}
		if !rec.Fact.LedgerCloseTime.Before(before) {
			continue
		}
		sum = sum.Add(rec.Fact.InstructedAmount)
	}
	return sum, nil
}

// MockMessageRepository is a mock implementation of MessageRepository.
type MockMessageRepository struct {
	mu       sync.RWMutex
	messages []*domain.FinancialMessage

	CreateTxFunc    func(ctx context.Context, tx usecase.Transaction, msg *domain.FinancialMessage) error
	CreateFunc      func(ctx context.Context, msg *domain.FinancialMessage) error
	GetByIDFunc     func(ctx context.Context, id string) (*domain.FinancialMessage, error)
	GetByUETRFunc   func(ctx context.Context, uetr string) ([]*domain.FinancialMessage, error)
	ListByRangeFunc func(ctx context.Context, from, to time.Time, limit, offset int) ([]*domain.FinancialMessage, error)
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{}
}

func (m *MockMessageRepository) CreateTx(ctx context.Context, tx usecase.Transaction, msg *domain.FinancialMessage) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, msg)
	}
	return m.Create(ctx, msg)
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *domain.FinancialMessage) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *MockMessageRepository) GetByID(ctx context.Context, id string) (*domain.FinancialMessage, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, msg := range m.messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, domain.ErrMessageNotFound
}

func (m *MockMessageRepository) GetByUETR(ctx context.Context, uetr string) ([]*domain.FinancialMessage, error) {
	if m.GetByUETRFunc != nil {
		return m.GetByUETRFunc(ctx, uetr)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.FinancialMessage
	for _, msg := range m.messages {
		if msg.UETR == uetr {
			matched = append(matched, msg)
			continue
		}
		for _, ref := range msg.References {
			if ref == uetr {
				matched = append(matched, msg)
				break
			}
		}
	}
	return matched, nil
}

func (m *MockMessageRepository) ListByRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*domain.FinancialMessage, error) {
	if m.ListByRangeFunc != nil {
		return m.ListByRangeFunc(ctx, from, to, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.FinancialMessage
	for _, msg := range m.messages {
		if msg.CreatedAt.Before(from) || msg.CreatedAt.After(to) {
			continue
		}
		matched = append(matched, msg)
	}
	return matched, nil
}

// Messages returns a snapshot of all stored messages.
func (m *MockMessageRepository) Messages() []*domain.FinancialMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.FinancialMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu      sync.RWMutex
	entries []*domain.AuditEntry

	CreateFunc func(ctx context.Context, entry *domain.AuditEntry) error
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.AuditEntry
	for _, entry := range m.entries {
		if filter.Actor != "" && entry.Actor != filter.Actor {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.SubjectType != "" && entry.SubjectType != filter.SubjectType {
			continue
		}
		if filter.SubjectID != "" && entry.SubjectID != filter.SubjectID {
			continue
		}
		matched = append(matched, entry)
	}
	return matched, nil
}

func (m *MockAuditRepository) GetBySubject(ctx context.Context, subjectType, subjectID string) ([]*domain.AuditEntry, error) {
	return m.List(ctx, domain.AuditFilter{SubjectType: subjectType, SubjectID: subjectID})
}

// Entries returns a snapshot of all recorded entries.
func (m *MockAuditRepository) Entries() []*domain.AuditEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.AuditEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockTxManager is a mock implementation of TransactionManager.
type MockTxManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

func (m *MockTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator generates deterministic sequential IDs.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int
	prefix  string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{prefix: "ID"}
}

func (m *MockIDGenerator) Generate() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("%s%03d", m.prefix, m.counter)
}

// MockReferenceGenerator returns preconfigured references in order.
type MockReferenceGenerator struct {
	mu   sync.Mutex
	refs []domain.TransactionReference
	next int

	GenerateFunc func() (domain.TransactionReference, error)
}

func NewMockReferenceGenerator(refs ...domain.TransactionReference) *MockReferenceGenerator {
	return &MockReferenceGenerator{refs: refs}
}

func (m *MockReferenceGenerator) Generate() (domain.TransactionReference, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := m.refs[m.next%len(m.refs)]
	m.next++
	return ref, nil
}

// MockRetrier invokes the operation once without retrying.
type MockRetrier struct{}

func (MockRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}

var errCacheMiss = errors.New("cache miss")

// MockCache is an in-memory Cache.
type MockCache struct {
	mu    sync.RWMutex
	items map[string][]byte

	GetFunc func(ctx context.Context, key string) ([]byte, error)
	SetFunc func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func NewMockCache() *MockCache {
	return &MockCache{items: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if value, ok := m.items[key]; ok {
		return value, nil
	}
	return nil, errCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
