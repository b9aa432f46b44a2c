package usecase_test

import (
	"context"
	"encoding/xml"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/isobridge/internal/domain"
	"github.com/iho/isobridge/internal/iso20022"
	"github.com/iho/isobridge/internal/usecase"
	"github.com/iho/isobridge/internal/usecase/gomocks"
	"github.com/iho/isobridge/internal/usecase/mocks"
)

func statementInput() usecase.GenerateStatementInput {
	return usecase.GenerateStatementInput{
		Party: "remitter-mx",
		From:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:    time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Actor: "tester",
	}
}

func recordedSettlement(uetr string, sequence uint64, amount string) *domain.RecordedSettlement {
	return &domain.RecordedSettlement{
		Fact: domain.SettlementFact{
			ID:                 "S-" + uetr[:8],
			SourceParty:        "remitter-mx",
			BeneficiaryParty:   "beneficiary-mx",
			InstructedAmount:   decimal.RequireFromString(amount),
			InstructedCurrency: "MXN",
			LedgerTxHash:       testHash(),
			LedgerCloseTime:    testCloseTime,
			Status:             domain.SettlementConfirmed,
		},
		Reference: domain.TransactionReference{
			UETR:       uetr,
			Sequence:   sequence,
			AssignedAt: testCloseTime,
		},
	}
}

func TestStatementUseCase_GenerateStatement(t *testing.T) {
	settlementRepo := mocks.NewMockSettlementRepository()
	messageRepo := mocks.NewMockMessageRepository()
	auditRepo := mocks.NewMockAuditRepository()

	// Returned out of sequence order; the statement must reorder them.
	second := recordedSettlement("aa6305c9-1f7f-49de-aed0-16487c27b42d", 2, "100")
	first := recordedSettlement(testUETR, 1, "525.00")

	settlementRepo.ListByPartyFunc = func(ctx context.Context, party string, from, to time.Time, limit, offset int) ([]*domain.RecordedSettlement, error) {
		if offset > 0 {
			return nil, nil
		}
		return []*domain.RecordedSettlement{second, first}, nil
	}
	settlementRepo.SumInstructedByPartyFunc = func(ctx context.Context, party, currency string, before time.Time) (decimal.Decimal, error) {
		return decimal.RequireFromString("1000"), nil
	}

	uc := usecase.NewStatementUseCase(settlementRepo, messageRepo, auditRepo, mocks.NewMockIDGenerator(), zerolog.Nop())

	msg, err := uc.GenerateStatement(context.Background(), statementInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.Type != domain.MessageStatement {
		t.Errorf("message type: got %q", msg.Type)
	}

	if msg.Party != "remitter-mx" {
		t.Errorf("party: got %q", msg.Party)
	}

	if len(msg.References) != 2 || msg.References[0] != testUETR {
		t.Errorf("references not ordered by sequence: %v", msg.References)
	}

	if !msg.VerifyChecksum() {
		t.Error("statement checksum mismatch")
	}

	var doc iso20022.Camt053Document
	if err := xml.Unmarshal(msg.Body, &doc); err != nil {
		t.Fatalf("statement body does not parse: %v", err)
	}

	balances := doc.Stmt.Item.Balances
	if len(balances) != 2 {
		t.Fatalf("expected opening and closing balances, got %d", len(balances))
	}

	if balances[0].Amt.Value != "1000.00" {
		t.Errorf("opening balance: got %q", balances[0].Amt.Value)
	}

	if balances[1].Amt.Value != "1625.00" {
		t.Errorf("closing balance: got %q", balances[1].Amt.Value)
	}

	if len(messageRepo.Messages()) != 1 {
		t.Errorf("statement not persisted")
	}

	entries := auditRepo.Entries()
	if len(entries) != 1 || entries[0].Status != string(domain.AuditStatusSuccess) {
		t.Errorf("expected one success audit entry, got %+v", entries)
	}
}

func TestStatementUseCase_GenerateStatement_EmptyPeriod(t *testing.T) {
	ctrl := gomock.NewController(t)

	settlementRepo := gomocks.NewMockSettlementRepository(ctrl)
	messageRepo := gomocks.NewMockMessageRepository(ctrl)
	auditRepo := mocks.NewMockAuditRepository()

	settlementRepo.EXPECT().
		ListByParty(gomock.Any(), "remitter-mx", gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)

	uc := usecase.NewStatementUseCase(settlementRepo, messageRepo, auditRepo, mocks.NewMockIDGenerator(), zerolog.Nop())

	_, err := uc.GenerateStatement(context.Background(), statementInput())
	if !errors.Is(err, domain.ErrEmptyPeriod) {
		t.Fatalf("expected ErrEmptyPeriod, got %v", err)
	}

	entries := auditRepo.Entries()
	if len(entries) != 1 || entries[0].Status != string(domain.AuditStatusFailure) {
		t.Errorf("expected one failure audit entry, got %+v", entries)
	}
}

func TestStatementUseCase_GenerateStatement_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*usecase.GenerateStatementInput)
	}{
		{
			name:   "missing party",
			mutate: func(in *usecase.GenerateStatementInput) { in.Party = "" },
		},
		{
			name:   "inverted range",
			mutate: func(in *usecase.GenerateStatementInput) { in.From, in.To = in.To, in.From },
		},
		{
			name: "zero range",
			mutate: func(in *usecase.GenerateStatementInput) {
				in.From = time.Time{}
				in.To = time.Time{}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := usecase.NewStatementUseCase(
				mocks.NewMockSettlementRepository(),
				mocks.NewMockMessageRepository(),
				mocks.NewMockAuditRepository(),
				mocks.NewMockIDGenerator(),
				zerolog.Nop(),
			)

			in := statementInput()
			tt.mutate(&in)

			_, err := uc.GenerateStatement(context.Background(), in)
			if !errors.Is(err, domain.ErrInvalidSettlement) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestStatementUseCase_GenerateStatement_SkipsFailedSettlements(t *testing.T) {
	settlementRepo := mocks.NewMockSettlementRepository()

	failed := recordedSettlement("aa6305c9-1f7f-49de-aed0-16487c27b42d", 2, "100")
	failed.Fact.Status = domain.SettlementFailed
	confirmed := recordedSettlement(testUETR, 1, "525.00")

	settlementRepo.ListByPartyFunc = func(ctx context.Context, party string, from, to time.Time, limit, offset int) ([]*domain.RecordedSettlement, error) {
		if offset > 0 {
			return nil, nil
		}
		return []*domain.RecordedSettlement{failed, confirmed}, nil
	}

	uc := usecase.NewStatementUseCase(
		settlementRepo,
		mocks.NewMockMessageRepository(),
		mocks.NewMockAuditRepository(),
		mocks.NewMockIDGenerator(),
		zerolog.Nop(),
	)

	msg, err := uc.GenerateStatement(context.Background(), statementInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(msg.References) != 1 || msg.References[0] != testUETR {
		t.Errorf("failed settlement leaked into statement: %v", msg.References)
	}
}
