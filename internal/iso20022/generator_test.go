package iso20022_test

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/isobridge/internal/domain"
	"github.com/iho/isobridge/internal/iso20022"
)

var (
	testHash      = "DEADBEEF" + strings.Repeat("0", 56)
	testCloseTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	testUETR      = "eb6305c9-1f7f-49de-aed0-16487c27b42d"
)

func testFact() *domain.SettlementFact {
	rate := decimal.RequireFromString("1.75")

	return &domain.SettlementFact{
		ID:                 "01SETTLEMENT",
		SourceParty:        "remitter-mx",
		BeneficiaryParty:   "beneficiary-mx",
		SourceAddress:      "rN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRH",
		DestinationAddress: "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe",
		InstructedAmount:   decimal.RequireFromString("525.00"),
		InstructedCurrency: "MXN",
		SettledAmount:      decimal.RequireFromString("300.0"),
		SettledAsset:       "XRP",
		ExchangeRate:       &rate,
		LedgerTxHash:       testHash,
		LedgerCloseTime:    testCloseTime,
		Status:             domain.SettlementConfirmed,
		CreatedAt:          testCloseTime,
	}
}

func testRef() domain.TransactionReference {
	return domain.TransactionReference{
		UETR:       testUETR,
		Sequence:   7,
		AssignedAt: time.Date(2025, 6, 15, 12, 0, 30, 0, time.UTC),
	}
}

func TestBuildCreditTransfer(t *testing.T) {
	body, err := iso20022.BuildCreditTransfer(testFact(), testRef())
	require.NoError(t, err)

	var doc iso20022.Pacs008Document
	require.NoError(t, xml.Unmarshal(body, &doc))

	assert.Equal(t, iso20022.NamespacePacs008, doc.Xmlns)
	assert.Equal(t, testUETR, doc.CdtTrf.GrpHdr.MsgID)
	assert.Equal(t, "2025-06-15T12:00:30", doc.CdtTrf.GrpHdr.CreDtTm)
	assert.Equal(t, "1", doc.CdtTrf.GrpHdr.NbOfTxs)

	tx := doc.CdtTrf.TxInf
	assert.Equal(t, testUETR, tx.PmtID.UETR)
	assert.Equal(t, testUETR, tx.PmtID.InstrID)
	assert.Equal(t, "E2E20250615120000DEADBEEF", tx.PmtID.EndToEndID)
	assert.Equal(t, "525.00", tx.IntrBkSttlmAmt.Value)
	assert.Equal(t, "MXN", tx.IntrBkSttlmAmt.Ccy)
	assert.Equal(t, "2025-06-15", tx.IntrBkSttlmDt)
	assert.Equal(t, "remitter-mx", tx.Dbtr.Nm)
	assert.Equal(t, "rN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRH", tx.DbtrAcct.Othr.ID)
	assert.Equal(t, "beneficiary-mx", tx.Cdtr.Nm)
	assert.Equal(t, "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe", tx.CdtrAcct.Othr.ID)

	envlp := tx.SplmtryData.Envelope
	assert.Equal(t, testHash, envlp.LedgerTxHash)
	require.NotNil(t, envlp.SettledAmt)
	assert.Equal(t, "XRP", envlp.SettledAmt.Ccy)
	assert.Equal(t, "300", envlp.SettledAmt.Value)
	assert.Equal(t, "1.75", envlp.FXRate)
}

func TestBuildCreditTransfer_Deterministic(t *testing.T) {
	first, err := iso20022.BuildCreditTransfer(testFact(), testRef())
	require.NoError(t, err)

	second, err := iso20022.BuildCreditTransfer(testFact(), testRef())
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first, second), "two syntheses of the same fact diverged")
}

func TestBuildCreditTransfer_SameAsset(t *testing.T) {
	fact := testFact()
	fact.SettledAsset = "MXN"
	fact.SettledAmount = fact.InstructedAmount
	fact.ExchangeRate = nil

	body, err := iso20022.BuildCreditTransfer(fact, testRef())
	require.NoError(t, err)

	var doc iso20022.Pacs008Document
	require.NoError(t, xml.Unmarshal(body, &doc))
	assert.Empty(t, doc.CdtTrf.TxInf.SplmtryData.Envelope.FXRate)
}

func TestBuildCreditTransfer_RejectsFailedFact(t *testing.T) {
	fact := testFact()
	fact.Status = domain.SettlementFailed

	_, err := iso20022.BuildCreditTransfer(fact, testRef())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSynthesisFailure)
}

func TestBuildCreditTransfer_RejectsMalformedReference(t *testing.T) {
	ref := testRef()
	ref.UETR = "not-a-uetr"

	_, err := iso20022.BuildCreditTransfer(testFact(), ref)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSynthesisFailure)
}

func TestBuildNotification(t *testing.T) {
	body, err := iso20022.BuildNotification(testFact(), testRef())
	require.NoError(t, err)

	var doc iso20022.Camt054Document
	require.NoError(t, xml.Unmarshal(body, &doc))

	assert.Equal(t, iso20022.NamespaceCamt054, doc.Xmlns)
	assert.Equal(t, "NTFCTN-"+testUETR, doc.Ntfctn.GrpHdr.MsgID)
	assert.Equal(t, testUETR, doc.Ntfctn.Item.ID)

	entries := doc.Ntfctn.Item.Entries
	require.Len(t, entries, 2)
	assert.Equal(t, "DBIT", entries[0].CdtDbtInd)
	assert.Equal(t, "CRDT", entries[1].CdtDbtInd)

	for _, entry := range entries {
		assert.Equal(t, "BOOK", entry.Sts)
		assert.Equal(t, "525.00", entry.Amt.Value)
		assert.Equal(t, "MXN", entry.Amt.Ccy)
		require.NotNil(t, entry.Details)
		assert.Equal(t, testUETR, entry.Details.TxDtls.Refs.UETR)
	}
}

func TestBuildNotification_Deterministic(t *testing.T) {
	first, err := iso20022.BuildNotification(testFact(), testRef())
	require.NoError(t, err)

	second, err := iso20022.BuildNotification(testFact(), testRef())
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first, second))
}

func statementInput() iso20022.StatementInput {
	return iso20022.StatementInput{
		StatementID:    "01STATEMENT",
		Party:          "remitter-mx",
		From:           time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:             time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		GeneratedAt:    time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
		Currency:       "MXN",
		OpeningBalance: decimal.RequireFromString("100"),
		ClosingBalance: decimal.RequireFromString("625"),
		Lines: []iso20022.StatementLine{
			{
				UETR:       testUETR,
				EndToEndID: "E2E20250615120000DEADBEEF",
				Amount:     decimal.RequireFromString("525.00"),
				Currency:   "MXN",
			},
		},
	}
}

func TestBuildStatement(t *testing.T) {
	body, err := iso20022.BuildStatement(statementInput())
	require.NoError(t, err)

	var doc iso20022.Camt053Document
	require.NoError(t, xml.Unmarshal(body, &doc))

	assert.Equal(t, iso20022.NamespaceCamt053, doc.Xmlns)
	assert.Equal(t, "01STATEMENT", doc.Stmt.Item.ID)
	assert.Equal(t, "remitter-mx", doc.Stmt.Item.Acct.Othr.ID)
	assert.Equal(t, "2025-06-01T00:00:00", doc.Stmt.Item.FrToDt.FrDtTm)
	assert.Equal(t, "2025-07-01T00:00:00", doc.Stmt.Item.FrToDt.ToDtTm)

	balances := doc.Stmt.Item.Balances
	require.Len(t, balances, 2)
	assert.Equal(t, "OPBD", balances[0].Tp.Cd)
	assert.Equal(t, "100.00", balances[0].Amt.Value)
	assert.Equal(t, "CLBD", balances[1].Tp.Cd)
	assert.Equal(t, "625.00", balances[1].Amt.Value)

	require.Len(t, doc.Stmt.Item.Entries, 1)
	assert.Equal(t, "525.00", doc.Stmt.Item.Entries[0].Amt.Value)
	assert.Equal(t, testUETR, doc.Stmt.Item.Entries[0].Details.TxDtls.Refs.UETR)
}

func TestBuildStatement_MixedCurrencies(t *testing.T) {
	in := statementInput()
	in.Lines = append(in.Lines, iso20022.StatementLine{
		UETR:       "aa6305c9-1f7f-49de-aed0-16487c27b42d",
		EndToEndID: "E2E20250616120000CAFEBABE",
		Amount:     decimal.RequireFromString("10"),
		Currency:   "USD",
	})

	_, err := iso20022.BuildStatement(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSynthesisFailure)

	var serr *domain.SynthesisError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "instructed_currency", serr.Field)
}

func TestEndToEndID_Deterministic(t *testing.T) {
	fact := testFact()

	assert.Equal(t, iso20022.EndToEndID(fact), iso20022.EndToEndID(fact))
	assert.Equal(t, "E2E20250615120000DEADBEEF", iso20022.EndToEndID(fact))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "525.00", iso20022.FormatAmount(decimal.RequireFromString("525")))
	assert.Equal(t, "0.10", iso20022.FormatAmount(decimal.RequireFromString("0.1")))
	assert.Equal(t, "1.35", iso20022.FormatAmount(decimal.RequireFromString("1.345")))
}
