package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/isobridge/internal/domain"
)

var testCloseTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testHash() string {
	return "DEADBEEF" + strings.Repeat("0", 56)
}

func validConfirmation() domain.LedgerConfirmation {
	rate := decimal.RequireFromString("1.75")

	return domain.LedgerConfirmation{
		SourceParty:        "remitter-mx",
		BeneficiaryParty:   "beneficiary-mx",
		SourceAddress:      "rN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRH",
		DestinationAddress: "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe",
		InstructedAmount:   decimal.RequireFromString("525.00"),
		InstructedCurrency: "MXN",
		SettledAmount:      decimal.RequireFromString("300.0"),
		SettledAsset:       "XRP",
		ExchangeRate:       &rate,
		TxHash:             "0x" + testHash(),
		LedgerCloseTime:    testCloseTime,
		Succeeded:          true,
	}
}

func TestFromLedgerConfirmation_Valid(t *testing.T) {
	now := testCloseTime.Add(time.Minute)

	fact, err := domain.FromLedgerConfirmation(validConfirmation(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fact.Status != domain.SettlementConfirmed {
		t.Errorf("expected confirmed status, got %q", fact.Status)
	}

	if fact.LedgerTxHash != testHash() {
		t.Errorf("hash not normalized: got %q", fact.LedgerTxHash)
	}

	if fact.InstructedCurrency != "MXN" || fact.SettledAsset != "XRP" {
		t.Errorf("currency/asset not normalized: %q %q", fact.InstructedCurrency, fact.SettledAsset)
	}

	wantURL := "https://testnet.xrpl.org/transactions/" + testHash()
	if fact.ExplorerURL() != wantURL {
		t.Errorf("explorer URL: got %q, want %q", fact.ExplorerURL(), wantURL)
	}
}

func TestFromLedgerConfirmation_FailedPayment(t *testing.T) {
	conf := validConfirmation()
	conf.Succeeded = false

	fact, err := domain.FromLedgerConfirmation(conf, testCloseTime.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fact.Status != domain.SettlementFailed {
		t.Errorf("expected failed status, got %q", fact.Status)
	}
}

func TestFromLedgerConfirmation_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*domain.LedgerConfirmation)
		wantField string
	}{
		{
			name:      "missing source party",
			mutate:    func(c *domain.LedgerConfirmation) { c.SourceParty = "  " },
			wantField: "source_party",
		},
		{
			name:      "missing beneficiary party",
			mutate:    func(c *domain.LedgerConfirmation) { c.BeneficiaryParty = "" },
			wantField: "beneficiary_party",
		},
		{
			name:      "address without r prefix",
			mutate:    func(c *domain.LedgerConfirmation) { c.SourceAddress = "xN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRH" },
			wantField: "source_address",
		},
		{
			name:      "address too short",
			mutate:    func(c *domain.LedgerConfirmation) { c.DestinationAddress = "rShort" },
			wantField: "destination_address",
		},
		{
			name:      "zero instructed amount",
			mutate:    func(c *domain.LedgerConfirmation) { c.InstructedAmount = decimal.Zero },
			wantField: "instructed_amount",
		},
		{
			name:      "zero settled amount",
			mutate:    func(c *domain.LedgerConfirmation) { c.SettledAmount = decimal.Zero },
			wantField: "settled_amount",
		},
		{
			name:      "negative settled amount",
			mutate:    func(c *domain.LedgerConfirmation) { c.SettledAmount = decimal.RequireFromString("-1") },
			wantField: "settled_amount",
		},
		{
			name:      "amount above cap",
			mutate:    func(c *domain.LedgerConfirmation) { c.InstructedAmount = decimal.RequireFromString("1000000000001") },
			wantField: "instructed_amount",
		},
		{
			name:      "unknown currency",
			mutate:    func(c *domain.LedgerConfirmation) { c.InstructedCurrency = "GBP" },
			wantField: "instructed_currency",
		},
		{
			name:      "unknown asset",
			mutate:    func(c *domain.LedgerConfirmation) { c.SettledAsset = "DOGE" },
			wantField: "settled_asset",
		},
		{
			name:      "missing rate on cross-asset settlement",
			mutate:    func(c *domain.LedgerConfirmation) { c.ExchangeRate = nil },
			wantField: "exchange_rate",
		},
		{
			name: "non-positive rate",
			mutate: func(c *domain.LedgerConfirmation) {
				zero := decimal.Zero
				c.ExchangeRate = &zero
			},
			wantField: "exchange_rate",
		},
		{
			name: "rate present on same-asset settlement",
			mutate: func(c *domain.LedgerConfirmation) {
				c.InstructedCurrency = "MXN"
				c.SettledAsset = "MXN"
			},
			wantField: "exchange_rate",
		},
		{
			name:      "empty hash",
			mutate:    func(c *domain.LedgerConfirmation) { c.TxHash = "" },
			wantField: "ledger_tx_hash",
		},
		{
			name:      "short hash",
			mutate:    func(c *domain.LedgerConfirmation) { c.TxHash = "DEADBEEF" },
			wantField: "ledger_tx_hash",
		},
		{
			name:      "non-hex hash",
			mutate:    func(c *domain.LedgerConfirmation) { c.TxHash = strings.Repeat("Z", 64) },
			wantField: "ledger_tx_hash",
		},
		{
			name:      "zero close time",
			mutate:    func(c *domain.LedgerConfirmation) { c.LedgerCloseTime = time.Time{} },
			wantField: "ledger_close_time",
		},
		{
			name:      "close time beyond skew tolerance",
			mutate:    func(c *domain.LedgerConfirmation) { c.LedgerCloseTime = testCloseTime.Add(time.Hour) },
			wantField: "ledger_close_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := validConfirmation()
			tt.mutate(&conf)

			_, err := domain.FromLedgerConfirmation(conf, testCloseTime.Add(time.Minute))
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if !errors.Is(err, domain.ErrInvalidSettlement) {
				t.Errorf("error does not unwrap to ErrInvalidSettlement: %v", err)
			}

			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}

			if verr.Field != tt.wantField {
				t.Errorf("field: got %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestFromLedgerConfirmation_SkewWithinTolerance(t *testing.T) {
	conf := validConfirmation()
	conf.LedgerCloseTime = testCloseTime.Add(4 * time.Minute)

	if _, err := domain.FromLedgerConfirmation(conf, testCloseTime); err != nil {
		t.Errorf("close time within skew tolerance rejected: %v", err)
	}
}

func TestNormalizeTxHash(t *testing.T) {
	want := testHash()

	for _, input := range []string{
		want,
		"0x" + want,
		"0X" + want,
		"  " + strings.ToLower(want) + " ",
	} {
		if got := domain.NormalizeTxHash(input); got != want {
			t.Errorf("NormalizeTxHash(%q) = %q, want %q", input, got, want)
		}
	}
}
