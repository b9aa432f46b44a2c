package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/isobridge/internal/domain"
)

// AuditRepository implements append-only audit trail persistence. Entries
// are inserted outside the consolidation transaction so failed operations
// still leave a trace.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Create inserts a new audit entry
func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	var inputJSON, outputJSON []byte
	var err error

	if entry.Input != nil {
		inputJSON, err = json.Marshal(entry.Input)
		if err != nil {
			return err
		}
	}

	if entry.Output != nil {
		outputJSON, err = json.Marshal(entry.Output)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO audit_entries (
			id, actor, action, subject_type, subject_id,
			input, output, status, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.pool.Exec(ctx, query,
		entry.ID,
		entry.Actor,
		entry.Action,
		entry.SubjectType,
		entry.SubjectID,
		inputJSON,
		outputJSON,
		entry.Status,
		entry.ErrorMessage,
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// List retrieves audit entries with filtering
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	query := `
		SELECT id, actor, action, subject_type, subject_id,
		       input, output, status, error_message, created_at
		FROM audit_entries
		WHERE 1=1
	`
	args := []any{}

	if filter.Actor != "" {
		args = append(args, filter.Actor)
		query += fmt.Sprintf(" AND actor = $%d", len(args))
	}

	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}

	if filter.SubjectType != "" {
		args = append(args, filter.SubjectType)
		query += fmt.Sprintf(" AND subject_type = $%d", len(args))
	}

	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		query += fmt.Sprintf(" AND subject_id = $%d", len(args))
	}

	if filter.StartDate != nil {
		args = append(args, timeToPgTimestamptz(*filter.StartDate))
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}

	if filter.EndDate != nil {
		args = append(args, timeToPgTimestamptz(*filter.EndDate))
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		var inputJSON, outputJSON []byte
		var createdAt pgtype.Timestamptz

		err := rows.Scan(
			&entry.ID,
			&entry.Actor,
			&entry.Action,
			&entry.SubjectType,
			&entry.SubjectID,
			&inputJSON,
			&outputJSON,
			&entry.Status,
			&entry.ErrorMessage,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		if inputJSON != nil {
			_ = json.Unmarshal(inputJSON, &entry.Input)
		}

		if outputJSON != nil {
			_ = json.Unmarshal(outputJSON, &entry.Output)
		}

		entry.CreatedAt = createdAt.Time

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// GetBySubject retrieves all audit entries for a specific subject
func (r *AuditRepository) GetBySubject(ctx context.Context, subjectType, subjectID string) ([]*domain.AuditEntry, error) {
	return r.List(ctx, domain.AuditFilter{
		SubjectType: subjectType,
		SubjectID:   subjectID,
	})
}
