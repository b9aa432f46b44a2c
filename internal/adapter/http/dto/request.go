package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/isobridge/internal/domain"
	"github.com/iho/isobridge/internal/usecase"
)

// SubmitSettlementRequest is a ledger confirmation pushed in by the ledger
// client collaborator. Amounts are exact decimals; floating point is
// rejected by the decimal unmarshaller.
type SubmitSettlementRequest struct {
	SourceParty        string           `json:"source_party"`
	BeneficiaryParty   string           `json:"beneficiary_party"`
	SourceAddress      string           `json:"source_address"`
	DestinationAddress string           `json:"destination_address"`
	InstructedAmount   decimal.Decimal  `json:"instructed_amount"`
	InstructedCurrency string           `json:"instructed_currency"`
	SettledAmount      decimal.Decimal  `json:"settled_amount"`
	SettledAsset       string           `json:"settled_asset"`
	ExchangeRate       *decimal.Decimal `json:"exchange_rate,omitempty"`
	TxHash             string           `json:"tx_hash"`
	LedgerCloseTime    time.Time        `json:"ledger_close_time"`
	Succeeded          bool             `json:"succeeded"`
}

// ToConfirmation converts to the domain confirmation record.
func (r *SubmitSettlementRequest) ToConfirmation() domain.LedgerConfirmation {
	return domain.LedgerConfirmation{
		SourceParty:        r.SourceParty,
		BeneficiaryParty:   r.BeneficiaryParty,
		SourceAddress:      r.SourceAddress,
		DestinationAddress: r.DestinationAddress,
		InstructedAmount:   r.InstructedAmount,
		InstructedCurrency: r.InstructedCurrency,
		SettledAmount:      r.SettledAmount,
		SettledAsset:       r.SettledAsset,
		ExchangeRate:       r.ExchangeRate,
		TxHash:             r.TxHash,
		LedgerCloseTime:    r.LedgerCloseTime,
		Succeeded:          r.Succeeded,
	}
}

// GenerateStatementRequest asks for a camt.053 over a closed period.
type GenerateStatementRequest struct {
	Party string    `json:"party"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
}

// ToUseCaseInput converts to use case input.
func (r *GenerateStatementRequest) ToUseCaseInput(actor string) usecase.GenerateStatementInput {
	return usecase.GenerateStatementInput{
		Party: r.Party,
		From:  r.From,
		To:    r.To,
		Actor: actor,
	}
}
