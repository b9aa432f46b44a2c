package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/isobridge/internal/domain"
	"github.com/iho/isobridge/internal/usecase"
)

// SettlementRepository implements usecase.SettlementRepository.
type SettlementRepository struct {
	pool *pgxpool.Pool
}

// NewSettlementRepository creates a new SettlementRepository.
func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{pool: pool}
}

const settlementColumns = `
	s.id, s.source_party, s.beneficiary_party, s.source_address, s.destination_address,
	s.instructed_amount, s.instructed_currency, s.settled_amount, s.settled_asset,
	s.exchange_rate, s.ledger_tx_hash, s.ledger_close_time, s.status, s.created_at,
	r.uetr, r.sequence, r.assigned_at`

// CreateTx persists a fact and its reference inside the caller's
// transaction. A second commit of the same ledger hash hits the unique
// index and surfaces as ErrDuplicateSettlement.
func (r *SettlementRepository) CreateTx(ctx context.Context, tx usecase.Transaction, fact *domain.SettlementFact, ref domain.TransactionReference) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO settlements (
			id, source_party, beneficiary_party, source_address, destination_address,
			instructed_amount, instructed_currency, settled_amount, settled_asset,
			exchange_rate, ledger_tx_hash, ledger_close_time, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		fact.ID,
		fact.SourceParty,
		fact.BeneficiaryParty,
		fact.SourceAddress,
		fact.DestinationAddress,
		decimalToNumeric(fact.InstructedAmount),
		fact.InstructedCurrency,
		decimalToNumeric(fact.SettledAmount),
		fact.SettledAsset,
		decimalPtrToNumeric(fact.ExchangeRate),
		fact.LedgerTxHash,
		timeToPgTimestamptz(fact.LedgerCloseTime),
		string(fact.Status),
		timeToPgTimestamptz(fact.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSettlement
		}

		return fmt.Errorf("insert settlement: %w", err)
	}

	_, err = pgxTx.Exec(ctx, `
		INSERT INTO transaction_references (uetr, settlement_id, sequence, assigned_at)
		VALUES ($1, $2, $3, $4)`,
		ref.UETR,
		fact.ID,
		int64(ref.Sequence),
		timeToPgTimestamptz(ref.AssignedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSettlement
		}

		return fmt.Errorf("insert reference: %w", err)
	}

	return nil
}

// GetByUETR retrieves a recorded settlement by its reference.
func (r *SettlementRepository) GetByUETR(ctx context.Context, uetr string) (*domain.RecordedSettlement, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+settlementColumns+`
		FROM settlements s
		JOIN transaction_references r ON r.settlement_id = s.id
		WHERE r.uetr = $1`,
		uetr,
	)

	return scanRecordedSettlement(row)
}

// GetByTxHash retrieves a recorded settlement by its ledger hash.
func (r *SettlementRepository) GetByTxHash(ctx context.Context, hash string) (*domain.RecordedSettlement, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+settlementColumns+`
		FROM settlements s
		JOIN transaction_references r ON r.settlement_id = s.id
		WHERE s.ledger_tx_hash = $1`,
		hash,
	)

	return scanRecordedSettlement(row)
}

// ListByParty lists recorded settlements where the party is source or
// beneficiary, within the close-time range, ordered by assignment sequence.
func (r *SettlementRepository) ListByParty(ctx context.Context, party string, from, to time.Time, limit, offset int) ([]*domain.RecordedSettlement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+settlementColumns+`
		FROM settlements s
		JOIN transaction_references r ON r.settlement_id = s.id
		WHERE (s.source_party = $1 OR s.beneficiary_party = $1)
		  AND s.ledger_close_time >= $2
		  AND s.ledger_close_time <= $3
		ORDER BY r.sequence
		LIMIT $4 OFFSET $5`,
		party,
		timeToPgTimestamptz(from),
		timeToPgTimestamptz(to),
		int32(limit),
		int32(offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.RecordedSettlement
	for rows.Next() {
		rec, err := scanRecordedSettlement(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// SumInstructedByParty sums instructed amounts of confirmed settlements
// involving the party, in the given currency, closed before the cutoff.
func (r *SettlementRepository) SumInstructedByParty(ctx context.Context, party, currency string, before time.Time) (decimal.Decimal, error) {
	var sum pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(instructed_amount), 0)
		FROM settlements
		WHERE (source_party = $1 OR beneficiary_party = $1)
		  AND instructed_currency = $2
		  AND status = $3
		  AND ledger_close_time < $4`,
		party,
		currency,
		string(domain.SettlementConfirmed),
		timeToPgTimestamptz(before),
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecordedSettlement(row rowScanner) (*domain.RecordedSettlement, error) {
	var (
		rec        domain.RecordedSettlement
		instructed pgtype.Numeric
		settled    pgtype.Numeric
		rate       pgtype.Numeric
		closeTime  pgtype.Timestamptz
		createdAt  pgtype.Timestamptz
		assignedAt pgtype.Timestamptz
		status     string
		sequence   int64
	)

	err := row.Scan(
		&rec.Fact.ID,
		&rec.Fact.SourceParty,
		&rec.Fact.BeneficiaryParty,
		&rec.Fact.SourceAddress,
		&rec.Fact.DestinationAddress,
		&instructed,
		&rec.Fact.InstructedCurrency,
		&settled,
		&rec.Fact.SettledAsset,
		&rate,
		&rec.Fact.LedgerTxHash,
		&closeTime,
		&status,
		&createdAt,
		&rec.Reference.UETR,
		&sequence,
		&assignedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettlementNotFound
		}

		return nil, err
	}

	rec.Fact.InstructedAmount = numericToDecimal(instructed)
	rec.Fact.SettledAmount = numericToDecimal(settled)
	rec.Fact.ExchangeRate = numericToDecimalPtr(rate)
	rec.Fact.LedgerCloseTime = closeTime.Time
	rec.Fact.CreatedAt = createdAt.Time
	rec.Fact.Status = domain.SettlementStatus(status)
	rec.Reference.Sequence = uint64(sequence)
	rec.Reference.AssignedAt = assignedAt.Time

	return &rec, nil
}
