package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/isobridge/internal/domain"
	"github.com/iho/isobridge/internal/usecase"
)

// MessageRepository implements usecase.MessageRepository.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

const messageColumns = `id, settlement_id, message_type, uetr, references_json, party, body, checksum, created_at`

const insertMessageSQL = `
	INSERT INTO financial_messages (
		id, settlement_id, message_type, uetr, references_json, party, body, checksum, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// CreateTx persists a message inside the caller's transaction.
func (r *MessageRepository) CreateTx(ctx context.Context, tx usecase.Transaction, msg *domain.FinancialMessage) error {
	pgxTx := tx.(*Tx).PgxTx()

	args, err := messageArgs(msg)
	if err != nil {
		return err
	}

	if _, err := pgxTx.Exec(ctx, insertMessageSQL, args...); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// Create persists a standalone message (statements).
func (r *MessageRepository) Create(ctx context.Context, msg *domain.FinancialMessage) error {
	args, err := messageArgs(msg)
	if err != nil {
		return err
	}

	if _, err := r.pool.Exec(ctx, insertMessageSQL, args...); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// GetByID retrieves a message by ID.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.FinancialMessage, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+messageColumns+` FROM financial_messages WHERE id = $1`, id)

	return scanMessage(row)
}

// GetByUETR retrieves all messages carrying a reference, credit transfer
// and notification first, then any statements that summarize it.
func (r *MessageRepository) GetByUETR(ctx context.Context, uetr string) ([]*domain.FinancialMessage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM financial_messages
		WHERE uetr = $1 OR references_json ? $1
		ORDER BY message_type, created_at`,
		uetr,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

// ListByRange lists messages created within a time range.
func (r *MessageRepository) ListByRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*domain.FinancialMessage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM financial_messages
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at
		LIMIT $3 OFFSET $4`,
		timeToPgTimestamptz(from),
		timeToPgTimestamptz(to),
		int32(limit),
		int32(offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

func messageArgs(msg *domain.FinancialMessage) ([]any, error) {
	var references []byte
	if msg.References != nil {
		var err error

		references, err = json.Marshal(msg.References)
		if err != nil {
			return nil, err
		}
	}

	var settlementID, uetr, party *string
	if msg.SettlementID != "" {
		settlementID = &msg.SettlementID
	}

	if msg.UETR != "" {
		uetr = &msg.UETR
	}

	if msg.Party != "" {
		party = &msg.Party
	}

	return []any{
		msg.ID,
		settlementID,
		string(msg.Type),
		uetr,
		references,
		party,
		msg.Body,
		msg.Checksum,
		timeToPgTimestamptz(msg.CreatedAt),
	}, nil
}

func scanMessage(row rowScanner) (*domain.FinancialMessage, error) {
	var (
		msg          domain.FinancialMessage
		settlementID *string
		uetr         *string
		party        *string
		references   []byte
		messageType  string
		createdAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&msg.ID,
		&settlementID,
		&messageType,
		&uetr,
		&references,
		&party,
		&msg.Body,
		&msg.Checksum,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}

		return nil, err
	}

	if settlementID != nil {
		msg.SettlementID = *settlementID
	}

	if uetr != nil {
		msg.UETR = *uetr
	}

	if party != nil {
		msg.Party = *party
	}

	if references != nil {
		_ = json.Unmarshal(references, &msg.References)
	}

	msg.Type = domain.MessageType(messageType)
	msg.CreatedAt = createdAt.Time

	return &msg, nil
}

func collectMessages(rows pgx.Rows) ([]*domain.FinancialMessage, error) {
	var messages []*domain.FinancialMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}

		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
