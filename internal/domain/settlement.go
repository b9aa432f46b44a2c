package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus is the final state the ledger reported for a payment.
type SettlementStatus string

const (
	SettlementConfirmed SettlementStatus = "confirmed"
	SettlementFailed    SettlementStatus = "failed"
)

// LedgerConfirmation is the raw record pushed in by the ledger client once
// a payment has settled. The bridge never calls back into the ledger.
type LedgerConfirmation struct {
	SourceParty        string
	BeneficiaryParty   string
	SourceAddress      string
	DestinationAddress string
	InstructedAmount   decimal.Decimal
	InstructedCurrency string
	SettledAmount      decimal.Decimal
	SettledAsset       string
	ExchangeRate       *decimal.Decimal
	TxHash             string
	LedgerCloseTime    time.Time
	Succeeded          bool
}

// SettlementFact is the normalized, immutable representation of a settled
// ledger payment. Facts are created through FromLedgerConfirmation only.
type SettlementFact struct {
	ID                 string
	SourceParty        string
	BeneficiaryParty   string
	SourceAddress      string
	DestinationAddress string
	InstructedAmount   decimal.Decimal
	InstructedCurrency string
	SettledAmount      decimal.Decimal
	SettledAsset       string
	ExchangeRate       *decimal.Decimal
	LedgerTxHash       string
	LedgerCloseTime    time.Time
	Status             SettlementStatus
	CreatedAt          time.Time
}

// FromLedgerConfirmation validates a raw confirmation and builds a
// SettlementFact. Any violation is reported as a ValidationError naming the
// offending field; the caller must not proceed to synthesis on error.
func FromLedgerConfirmation(conf LedgerConfirmation, now time.Time) (*SettlementFact, error) {
	if strings.TrimSpace(conf.SourceParty) == "" {
		return nil, &ValidationError{Field: "source_party", Reason: "party identifier is required"}
	}

	if strings.TrimSpace(conf.BeneficiaryParty) == "" {
		return nil, &ValidationError{Field: "beneficiary_party", Reason: "party identifier is required"}
	}

	if err := ValidateLedgerAddress("source_address", conf.SourceAddress); err != nil {
		return nil, err
	}

	if err := ValidateLedgerAddress("destination_address", conf.DestinationAddress); err != nil {
		return nil, err
	}

	if err := ValidateAmount("instructed_amount", conf.InstructedAmount); err != nil {
		return nil, err
	}

	if err := ValidateAmount("settled_amount", conf.SettledAmount); err != nil {
		return nil, err
	}

	if err := ValidateCurrency("instructed_currency", conf.InstructedCurrency); err != nil {
		return nil, err
	}

	if err := ValidateAsset("settled_asset", conf.SettledAsset); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(conf.InstructedCurrency))
	asset := strings.ToUpper(strings.TrimSpace(conf.SettledAsset))

	if currency != asset {
		if conf.ExchangeRate == nil {
			return nil, &ValidationError{Field: "exchange_rate", Reason: "rate is required when settled asset differs from instructed currency"}
		}

		if conf.ExchangeRate.LessThanOrEqual(decimal.Zero) {
			return nil, &ValidationError{Field: "exchange_rate", Reason: "rate must be positive"}
		}
	} else if conf.ExchangeRate != nil {
		return nil, &ValidationError{Field: "exchange_rate", Reason: "rate must be absent for same-asset settlement"}
	}

	hash := NormalizeTxHash(conf.TxHash)
	if err := ValidateTxHash(hash); err != nil {
		return nil, err
	}

	if err := ValidateCloseTime(conf.LedgerCloseTime, now); err != nil {
		return nil, err
	}

	status := SettlementConfirmed
	if !conf.Succeeded {
		status = SettlementFailed
	}

	return &SettlementFact{
		SourceParty:        strings.TrimSpace(conf.SourceParty),
		BeneficiaryParty:   strings.TrimSpace(conf.BeneficiaryParty),
		SourceAddress:      strings.TrimSpace(conf.SourceAddress),
		DestinationAddress: strings.TrimSpace(conf.DestinationAddress),
		InstructedAmount:   conf.InstructedAmount,
		InstructedCurrency: currency,
		SettledAmount:      conf.SettledAmount,
		SettledAsset:       asset,
		ExchangeRate:       conf.ExchangeRate,
		LedgerTxHash:       hash,
		LedgerCloseTime:    conf.LedgerCloseTime.UTC(),
		Status:             status,
		CreatedAt:          now.UTC(),
	}, nil
}

// ExplorerURL returns the public ledger explorer link for the fact's hash.
func (f *SettlementFact) ExplorerURL() string {
	return "https://testnet.xrpl.org/transactions/" + f.LedgerTxHash
}
