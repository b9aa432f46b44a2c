package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/isobridge/internal/domain"
	"github.com/iho/isobridge/internal/usecase"
)

// BridgeResultResponse is the handle returned after processing a
// confirmation.
type BridgeResultResponse struct {
	State           string             `json:"state"`
	UETR            string             `json:"uetr,omitempty"`
	Sequence        uint64             `json:"sequence,omitempty"`
	SettlementID    string             `json:"settlement_id,omitempty"`
	ExplorerURL     string             `json:"explorer_url,omitempty"`
	AlreadyRecorded bool               `json:"already_recorded,omitempty"`
	Messages        []*MessageResponse `json:"messages,omitempty"`
}

// BridgeResultFromUseCase converts a bridge result to a response.
func BridgeResultFromUseCase(result *usecase.BridgeResult) *BridgeResultResponse {
	return &BridgeResultResponse{
		State:           string(result.State),
		UETR:            result.UETR,
		Sequence:        result.Sequence,
		SettlementID:    result.SettlementID,
		ExplorerURL:     result.ExplorerURL,
		AlreadyRecorded: result.AlreadyRecorded,
		Messages:        MessagesFromDomain(result.Messages),
	}
}

// MessageResponse represents a financial message in API responses. The body
// is the serialized XML document, byte-identical to what was persisted.
type MessageResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UETR       string    `json:"uetr,omitempty"`
	References []string  `json:"references,omitempty"`
	Party      string    `json:"party,omitempty"`
	Body       string    `json:"body"`
	Checksum   string    `json:"checksum"`
	CreatedAt  time.Time `json:"created_at"`
}

// MessageFromDomain converts a domain message to a response.
func MessageFromDomain(m *domain.FinancialMessage) *MessageResponse {
	return &MessageResponse{
		ID:         m.ID,
		Type:       string(m.Type),
		UETR:       m.UETR,
		References: m.References,
		Party:      m.Party,
		Body:       string(m.Body),
		Checksum:   m.Checksum,
		CreatedAt:  m.CreatedAt,
	}
}

// MessagesFromDomain converts domain messages to responses.
func MessagesFromDomain(messages []*domain.FinancialMessage) []*MessageResponse {
	if messages == nil {
		return nil
	}

	result := make([]*MessageResponse, len(messages))
	for i, m := range messages {
		result[i] = MessageFromDomain(m)
	}
	return result
}

// SettlementResponse represents a recorded settlement in API responses.
type SettlementResponse struct {
	ID                 string           `json:"id"`
	UETR               string           `json:"uetr"`
	Sequence           uint64           `json:"sequence"`
	SourceParty        string           `json:"source_party"`
	BeneficiaryParty   string           `json:"beneficiary_party"`
	SourceAddress      string           `json:"source_address"`
	DestinationAddress string           `json:"destination_address"`
	InstructedAmount   decimal.Decimal  `json:"instructed_amount"`
	InstructedCurrency string           `json:"instructed_currency"`
	SettledAmount      decimal.Decimal  `json:"settled_amount"`
	SettledAsset       string           `json:"settled_asset"`
	ExchangeRate       *decimal.Decimal `json:"exchange_rate,omitempty"`
	LedgerTxHash       string           `json:"ledger_tx_hash"`
	LedgerCloseTime    time.Time        `json:"ledger_close_time"`
	Status             string           `json:"status"`
	ExplorerURL        string           `json:"explorer_url"`
	CreatedAt          time.Time        `json:"created_at"`
}

// SettlementFromDomain converts a recorded settlement to a response.
func SettlementFromDomain(rec *domain.RecordedSettlement) *SettlementResponse {
	return &SettlementResponse{
		ID:                 rec.Fact.ID,
		UETR:               rec.Reference.UETR,
		Sequence:           rec.Reference.Sequence,
		SourceParty:        rec.Fact.SourceParty,
		BeneficiaryParty:   rec.Fact.BeneficiaryParty,
		SourceAddress:      rec.Fact.SourceAddress,
		DestinationAddress: rec.Fact.DestinationAddress,
		InstructedAmount:   rec.Fact.InstructedAmount,
		InstructedCurrency: rec.Fact.InstructedCurrency,
		SettledAmount:      rec.Fact.SettledAmount,
		SettledAsset:       rec.Fact.SettledAsset,
		ExchangeRate:       rec.Fact.ExchangeRate,
		LedgerTxHash:       rec.Fact.LedgerTxHash,
		LedgerCloseTime:    rec.Fact.LedgerCloseTime,
		Status:             string(rec.Fact.Status),
		ExplorerURL:        rec.Fact.ExplorerURL(),
		CreatedAt:          rec.Fact.CreatedAt,
	}
}

// SettlementsFromDomain converts recorded settlements to responses.
func SettlementsFromDomain(records []*domain.RecordedSettlement) []*SettlementResponse {
	result := make([]*SettlementResponse, len(records))
	for i, rec := range records {
		result[i] = SettlementFromDomain(rec)
	}
	return result
}

// AuditEntryResponse represents an audit entry in API responses.
type AuditEntryResponse struct {
	ID           string         `json:"id"`
	Actor        string         `json:"actor"`
	Action       string         `json:"action"`
	SubjectType  string         `json:"subject_type"`
	SubjectID    string         `json:"subject_id"`
	Input        map[string]any `json:"input,omitempty"`
	Output       map[string]any `json:"output,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditEntryFromDomain converts a domain audit entry to a response.
func AuditEntryFromDomain(e *domain.AuditEntry) *AuditEntryResponse {
	return &AuditEntryResponse{
		ID:           e.ID,
		Actor:        e.Actor,
		Action:       e.Action,
		SubjectType:  e.SubjectType,
		SubjectID:    e.SubjectID,
		Input:        e.Input,
		Output:       e.Output,
		Status:       e.Status,
		ErrorMessage: e.ErrorMessage,
		CreatedAt:    e.CreatedAt,
	}
}

// AuditEntriesFromDomain converts domain audit entries to responses.
func AuditEntriesFromDomain(entries []*domain.AuditEntry) []*AuditEntryResponse {
	result := make([]*AuditEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = AuditEntryFromDomain(e)
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
