package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/isobridge/internal/domain"
)

// SettlementRepository defines data access for settlement facts and their
// references. Writes go through a transaction; reads observe committed state.
type SettlementRepository interface {
	CreateTx(ctx context.Context, tx Transaction, fact *domain.SettlementFact, ref domain.TransactionReference) error
	GetByUETR(ctx context.Context, uetr string) (*domain.RecordedSettlement, error)
	GetByTxHash(ctx context.Context, hash string) (*domain.RecordedSettlement, error)
	ListByParty(ctx context.Context, party string, from, to time.Time, limit, offset int) ([]*domain.RecordedSettlement, error)
	SumInstructedByParty(ctx context.Context, party, currency string, before time.Time) (decimal.Decimal, error)
}

// MessageRepository defines data access for financial messages.
type MessageRepository interface {
	CreateTx(ctx context.Context, tx Transaction, msg *domain.FinancialMessage) error
	Create(ctx context.Context, msg *domain.FinancialMessage) error
	GetByID(ctx context.Context, id string) (*domain.FinancialMessage, error)
	GetByUETR(ctx context.Context, uetr string) ([]*domain.FinancialMessage, error)
	ListByRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*domain.FinancialMessage, error)
}

// AuditRepository defines data access for the append-only audit trail.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error)
	GetBySubject(ctx context.Context, subjectType, subjectID string) ([]*domain.AuditEntry, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique row IDs.
type IDGenerator interface {
	Generate() string
}

// ReferenceGenerator assigns transaction references. A generation failure
// is fatal to the enclosing operation; implementations never retry.
type ReferenceGenerator interface {
	Generate() (domain.TransactionReference, error)
}

// Retrier retries an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
