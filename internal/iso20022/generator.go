package iso20022

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/isobridge/internal/domain"
)

// ISO 8601 formats used across all message bodies. All timestamps are UTC.
const (
	dateTimeFormat = "2006-01-02T15:04:05"
	dateFormat     = "2006-01-02"
)

// Entry status and indicator codes.
const (
	statusBooked    = "BOOK"
	indicatorCredit = "CRDT"
	indicatorDebit  = "DBIT"

	balanceOpening = "OPBD"
	balanceClosing = "CLBD"
)

// FormatAmount renders a monetary amount as an exact two-place decimal
// string, the fixed-width convention for fiat amounts in message bodies.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// EndToEndID derives the end-to-end identifier from the fact itself so two
// syntheses of the same fact produce byte-identical bodies.
func EndToEndID(fact *domain.SettlementFact) string {
	return fmt.Sprintf("E2E%s%s", fact.LedgerCloseTime.UTC().Format("20060102150405"), fact.LedgerTxHash[:8])
}

// BuildCreditTransfer synthesizes the pacs.008 body for a confirmed fact.
// The result depends only on the fact and reference; no clock is read.
func BuildCreditTransfer(fact *domain.SettlementFact, ref domain.TransactionReference) ([]byte, error) {
	if err := checkSynthesizable(fact, ref); err != nil {
		return nil, err
	}

	envelope := SupplementaryEnvelope{
		LedgerTxHash: fact.LedgerTxHash,
		SettledAmt: &Amount{
			Ccy:   fact.SettledAsset,
			Value: fact.SettledAmount.String(),
		},
	}
	if fact.ExchangeRate != nil {
		envelope.FXRate = fact.ExchangeRate.String()
	}

	doc := Pacs008Document{
		Xmlns: NamespacePacs008,
		CdtTrf: CreditTransfer{
			GrpHdr: GroupHeader{
				MsgID:   ref.UETR,
				CreDtTm: ref.AssignedAt.UTC().Format(dateTimeFormat),
				NbOfTxs: "1",
			},
			TxInf: CreditTransferTxInfo{
				PmtID: PaymentID{
					InstrID:    ref.UETR,
					EndToEndID: EndToEndID(fact),
					UETR:       ref.UETR,
				},
				IntrBkSttlmAmt: Amount{
					Ccy:   fact.InstructedCurrency,
					Value: FormatAmount(fact.InstructedAmount),
				},
				IntrBkSttlmDt: fact.LedgerCloseTime.UTC().Format(dateFormat),
				Dbtr:          Party{Nm: fact.SourceParty},
				DbtrAcct:      AccountID{Othr: OtherID{ID: fact.SourceAddress}},
				Cdtr:          Party{Nm: fact.BeneficiaryParty},
				CdtrAcct:      AccountID{Othr: OtherID{ID: fact.DestinationAddress}},
				SplmtryData:   SupplementaryData{Envelope: envelope},
			},
		},
	}

	return marshal(doc)
}

// BuildNotification synthesizes the camt.054 body: a debit entry for the
// source party and a credit entry for the beneficiary, both
// cross-referencing the credit transfer's reference.
func BuildNotification(fact *domain.SettlementFact, ref domain.TransactionReference) ([]byte, error) {
	if err := checkSynthesizable(fact, ref); err != nil {
		return nil, err
	}

	refs := References{
		EndToEndID: EndToEndID(fact),
		UETR:       ref.UETR,
	}

	amount := Amount{
		Ccy:   fact.InstructedCurrency,
		Value: FormatAmount(fact.InstructedAmount),
	}

	doc := Camt054Document{
		Xmlns: NamespaceCamt054,
		Ntfctn: Notification{
			GrpHdr: GroupHeader{
				MsgID:   "NTFCTN-" + ref.UETR,
				CreDtTm: ref.AssignedAt.UTC().Format(dateTimeFormat),
			},
			Item: NotificationItem{
				ID: ref.UETR,
				Entries: []Entry{
					{
						Amt:       amount,
						CdtDbtInd: indicatorDebit,
						Sts:       statusBooked,
						Details:   &EntryDetails{TxDtls: TransactionDetails{Refs: refs}},
					},
					{
						Amt:       amount,
						CdtDbtInd: indicatorCredit,
						Sts:       statusBooked,
						Details:   &EntryDetails{TxDtls: TransactionDetails{Refs: refs}},
					},
				},
			},
		},
	}

	return marshal(doc)
}

// StatementLine is one settlement summarized by a statement.
type StatementLine struct {
	UETR       string
	EndToEndID string
	Amount     decimal.Decimal
	Currency   string
}

// StatementInput carries everything a camt.053 body needs. Balances are
// computed by the caller; the builder only renders them.
type StatementInput struct {
	StatementID    string
	Party          string
	From           time.Time
	To             time.Time
	GeneratedAt    time.Time
	Currency       string
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	Lines          []StatementLine
}

// BuildStatement synthesizes the camt.053 body for a closed period.
func BuildStatement(in StatementInput) ([]byte, error) {
	if in.Party == "" {
		return nil, &domain.SynthesisError{Field: "party", Reason: "party identifier is required"}
	}

	if in.StatementID == "" {
		return nil, &domain.SynthesisError{Field: "statement_id", Reason: "statement identifier is required"}
	}

	entries := make([]Entry, 0, len(in.Lines))
	for _, line := range in.Lines {
		if line.Currency != in.Currency {
			return nil, &domain.SynthesisError{Field: "instructed_currency", Reason: "mixed currencies in statement period"}
		}

		entries = append(entries, Entry{
			Amt:       Amount{Ccy: line.Currency, Value: FormatAmount(line.Amount)},
			CdtDbtInd: indicatorCredit,
			Sts:       statusBooked,
			Details: &EntryDetails{TxDtls: TransactionDetails{Refs: References{
				EndToEndID: line.EndToEndID,
				UETR:       line.UETR,
			}}},
		})
	}

	closeDate := in.To.UTC().Format(dateFormat)

	doc := Camt053Document{
		Xmlns: NamespaceCamt053,
		Stmt: StatementDocument{
			GrpHdr: GroupHeader{
				MsgID:   in.StatementID,
				CreDtTm: in.GeneratedAt.UTC().Format(dateTimeFormat),
			},
			Item: Statement{
				ID:   in.StatementID,
				Acct: AccountID{Othr: OtherID{ID: in.Party}},
				FrToDt: Period{
					FrDtTm: in.From.UTC().Format(dateTimeFormat),
					ToDtTm: in.To.UTC().Format(dateTimeFormat),
				},
				Balances: []Balance{
					{
						Tp:        BalanceType{Cd: balanceOpening},
						Amt:       Amount{Ccy: in.Currency, Value: FormatAmount(in.OpeningBalance)},
						CdtDbtInd: indicatorCredit,
						Dt:        BalanceDate{Dt: in.From.UTC().Format(dateFormat)},
					},
					{
						Tp:        BalanceType{Cd: balanceClosing},
						Amt:       Amount{Ccy: in.Currency, Value: FormatAmount(in.ClosingBalance)},
						CdtDbtInd: indicatorCredit,
						Dt:        BalanceDate{Dt: closeDate},
					},
				},
				Entries: entries,
			},
		},
	}

	return marshal(doc)
}

func checkSynthesizable(fact *domain.SettlementFact, ref domain.TransactionReference) error {
	if fact.Status != domain.SettlementConfirmed {
		return &domain.SynthesisError{Field: "status", Reason: "only confirmed settlements are synthesized"}
	}

	if fact.SourceParty == "" {
		return &domain.SynthesisError{Field: "source_party", Reason: "party identifier is required"}
	}

	if fact.BeneficiaryParty == "" {
		return &domain.SynthesisError{Field: "beneficiary_party", Reason: "party identifier is required"}
	}

	if len(fact.LedgerTxHash) != domain.TxHashLength {
		return &domain.SynthesisError{Field: "ledger_tx_hash", Reason: "malformed hash"}
	}

	if !domain.ValidUETR(ref.UETR) {
		return &domain.SynthesisError{Field: "uetr", Reason: "malformed reference"}
	}

	return nil
}

func marshal(doc any) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &domain.SynthesisError{Field: "body", Reason: err.Error()}
	}

	return append([]byte(xml.Header), body...), nil
}
