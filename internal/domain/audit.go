package domain

import (
	"encoding/json"
	"time"
)

// AuditEntry is an append-only record of a bridge operation. Entries are
// never updated or deleted; every orchestrator operation writes exactly one,
// success or failure.
type AuditEntry struct {
	ID           string
	Actor        string // who triggered the operation
	Action       string // what action (settlement.process, statement.generate, ...)
	SubjectType  string // settlement, message, statement
	SubjectID    string // UETR or message ID
	Input        JSON   // operation inputs
	Output       JSON   // operation outputs
	Status       string // success, failure
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionSettlementProcess AuditAction = "settlement.process"
	AuditActionSettlementView    AuditAction = "settlement.view"
	AuditActionStatementGenerate AuditAction = "statement.generate"
	AuditActionMessageExport     AuditAction = "message.export"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit entries
type AuditFilter struct {
	Actor       string
	Action      string
	SubjectType string
	SubjectID   string
	StartDate   *time.Time
	EndDate     *time.Time
	Limit       int
	Offset      int
}
