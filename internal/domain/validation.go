package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxSettlementAmount = "1000000000000" // 1 trillion
	ClockSkewTolerance  = 5 * time.Minute
	TxHashLength        = 64
	MinAddressLength    = 25
	MaxAddressLength    = 35
)

// Recognized fiat currency codes (ISO 4217 subset).
var validCurrencies = map[string]bool{
	"MXN": true, "USD": true, "EUR": true,
}

// Recognized ledger asset codes.
var validAssets = map[string]bool{
	"XRP": true, "USDC": true, "RLUSD": true,
	"MXN": true, "USD": true, "EUR": true,
}

var txHashRegex = regexp.MustCompile(`^[0-9A-F]{64}$`)

// NormalizeTxHash strips an optional 0x prefix and upper-cases the hash so
// the uniqueness constraint sees one canonical form.
func NormalizeTxHash(hash string) string {
	hash = strings.TrimSpace(hash)
	hash = strings.TrimPrefix(hash, "0x")
	hash = strings.TrimPrefix(hash, "0X")

	return strings.ToUpper(hash)
}

// ValidateTxHash validates a normalized ledger transaction hash.
func ValidateTxHash(hash string) error {
	if hash == "" {
		return &ValidationError{Field: "ledger_tx_hash", Reason: "hash is required"}
	}

	if !txHashRegex.MatchString(hash) {
		return &ValidationError{Field: "ledger_tx_hash", Reason: "must be 64 hexadecimal characters"}
	}

	return nil
}

// ValidateAmount validates a settlement amount for the named field.
func ValidateAmount(field string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: field, Reason: "must be positive"}
	}

	maxAmount, _ := decimal.NewFromString(MaxSettlementAmount)
	if amount.GreaterThan(maxAmount) {
		return &ValidationError{Field: field, Reason: "exceeds maximum of " + MaxSettlementAmount}
	}

	return nil
}

// ValidateCurrency validates a fiat currency code.
func ValidateCurrency(field, currency string) error {
	if !validCurrencies[strings.ToUpper(strings.TrimSpace(currency))] {
		return &ValidationError{Field: field, Reason: "unrecognized currency code " + currency}
	}

	return nil
}

// ValidateAsset validates a ledger asset code.
func ValidateAsset(field, asset string) error {
	if !validAssets[strings.ToUpper(strings.TrimSpace(asset))] {
		return &ValidationError{Field: field, Reason: "unrecognized asset code " + asset}
	}

	return nil
}

// ValidateLedgerAddress validates a ledger address. Addresses start with
// 'r' and run 25 to 35 characters.
func ValidateLedgerAddress(field, address string) error {
	address = strings.TrimSpace(address)

	if address == "" {
		return &ValidationError{Field: field, Reason: "address is required"}
	}

	if !strings.HasPrefix(address, "r") {
		return &ValidationError{Field: field, Reason: "address must start with 'r'"}
	}

	if len(address) < MinAddressLength || len(address) > MaxAddressLength {
		return &ValidationError{Field: field, Reason: "address length out of range"}
	}

	return nil
}

// ValidateCloseTime rejects timestamps further in the future than the
// clock-skew tolerance allows.
func ValidateCloseTime(closeTime, now time.Time) error {
	if closeTime.IsZero() {
		return &ValidationError{Field: "ledger_close_time", Reason: "close time is required"}
	}

	if closeTime.After(now.Add(ClockSkewTolerance)) {
		return &ValidationError{Field: "ledger_close_time", Reason: "close time is in the future"}
	}

	return nil
}
