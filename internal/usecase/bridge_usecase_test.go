package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/isobridge/internal/domain"
	"github.com/iho/isobridge/internal/usecase"
	"github.com/iho/isobridge/internal/usecase/mocks"
)

var (
	testCloseTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	testUETR      = "eb6305c9-1f7f-49de-aed0-16487c27b42d"
)

func testHash() string {
	return "DEADBEEF" + strings.Repeat("0", 56)
}

func testRef() domain.TransactionReference {
	return domain.TransactionReference{
		UETR:       testUETR,
		Sequence:   1,
		AssignedAt: time.Date(2025, 6, 15, 12, 0, 30, 0, time.UTC),
	}
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
		TxHash:             testHash(),
		LedgerCloseTime:    testCloseTime,
		Succeeded:          true,
	}
}

type bridgeFixture struct {
	settlementRepo *mocks.MockSettlementRepository
	messageRepo    *mocks.MockMessageRepository
	auditRepo      *mocks.MockAuditRepository
	uc             *usecase.BridgeUseCase
}

func newBridgeFixture(refs ...domain.TransactionReference) *bridgeFixture {
	if len(refs) == 0 {
		refs = []domain.TransactionReference{testRef()}
	}

	f := &bridgeFixture{
		settlementRepo: mocks.NewMockSettlementRepository(),
		messageRepo:    mocks.NewMockMessageRepository(),
		auditRepo:      mocks.NewMockAuditRepository(),
	}

	f.uc = usecase.NewBridgeUseCase(
		mocks.NewMockTxManager(),
		f.settlementRepo,
		f.messageRepo,
		f.auditRepo,
		mocks.NewMockReferenceGenerator(refs...),
		mocks.NewMockIDGenerator(),
		mocks.MockRetrier{},
		zerolog.Nop(),
	)

	return f
}

func TestBridgeUseCase_ProcessSettlement_Committed(t *testing.T) {
	f := newBridgeFixture()

	result, err := f.uc.ProcessSettlement(context.Background(), validConfirmation(), "tester")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.State != usecase.StateCommitted {
		t.Errorf("state: got %q, want committed", result.State)
	}

	if result.UETR != testUETR {
		t.Errorf("UETR: got %q, want %q", result.UETR, testUETR)
	}

	if len(result.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(result.Messages))
	}

	if result.Messages[0].Type != domain.MessageCreditTransfer {
		t.Errorf("first message type: got %q", result.Messages[0].Type)
	}

	if result.Messages[1].Type != domain.MessageNotification {
		t.Errorf("second message type: got %q", result.Messages[1].Type)
	}

	for _, msg := range result.Messages {
		if !msg.VerifyChecksum() {
			t.Errorf("message %s checksum mismatch", msg.Type)
		}

		if !msg.CreatedAt.Equal(testRef().AssignedAt) {
			t.Errorf("message %s timestamp not pinned to reference assignment", msg.Type)
		}
	}

	entries := f.auditRepo.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(entries))
	}

	if entries[0].Status != string(domain.AuditStatusSuccess) {
		t.Errorf("audit status: got %q", entries[0].Status)
	}

	if entries[0].SubjectID != testUETR {
		t.Errorf("audit subject: got %q", entries[0].SubjectID)
	}
}

func TestBridgeUseCase_ProcessSettlement_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.LedgerConfirmation)
	}{
		{
			name:   "invalid amount",
			mutate: func(c *domain.LedgerConfirmation) { c.InstructedAmount = decimal.Zero },
		},
		{
			name:   "malformed hash",
			mutate: func(c *domain.LedgerConfirmation) { c.TxHash = "nonsense" },
		},
		{
			name:   "ledger reported failure",
			mutate: func(c *domain.LedgerConfirmation) { c.Succeeded = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBridgeFixture()

			conf := validConfirmation()
			tt.mutate(&conf)

			result, err := f.uc.ProcessSettlement(context.Background(), conf, "tester")
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if !errors.Is(err, domain.ErrInvalidSettlement) {
				t.Errorf("error does not unwrap to ErrInvalidSettlement: %v", err)
			}

			if result.State != usecase.StateRejected {
				t.Errorf("state: got %q, want rejected", result.State)
			}

			if len(f.messageRepo.Messages()) != 0 {
				t.Error("rejected settlement produced messages")
			}

			entries := f.auditRepo.Entries()
			if len(entries) != 1 {
				t.Fatalf("expected exactly one audit entry, got %d", len(entries))
			}

			if entries[0].Status != string(domain.AuditStatusFailure) {
				t.Errorf("audit status: got %q", entries[0].Status)
			}
		})
	}
}

func TestBridgeUseCase_ProcessSettlement_Duplicate(t *testing.T) {
	second := testRef()
	second.UETR = "aa6305c9-1f7f-49de-aed0-16487c27b42d"
	second.Sequence = 2

	f := newBridgeFixture(testRef(), second)

	first, err := f.uc.ProcessSettlement(context.Background(), validConfirmation(), "tester")
	if err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	messagesBefore := len(f.messageRepo.Messages())

	result, err := f.uc.ProcessSettlement(context.Background(), validConfirmation(), "tester")
	if !errors.Is(err, domain.ErrDuplicateSettlement) {
		t.Fatalf("expected ErrDuplicateSettlement, got %v", err)
	}

	if result.State != usecase.StateCommitFailed {
		t.Errorf("state: got %q, want commit_failed", result.State)
	}

	if !result.AlreadyRecorded {
		t.Error("AlreadyRecorded not set")
	}

	if result.UETR != first.UETR {
		t.Errorf("resubmission did not resolve the original reference: got %q, want %q", result.UETR, first.UETR)
	}

	if len(f.messageRepo.Messages()) != messagesBefore {
		t.Error("duplicate submission changed the persisted message set")
	}

	if len(f.auditRepo.Entries()) != 2 {
		t.Errorf("expected one audit entry per submission, got %d", len(f.auditRepo.Entries()))
	}
}

func TestBridgeUseCase_ProcessSettlement_CommitRace(t *testing.T) {
	f := newBridgeFixture()

	existing := &domain.RecordedSettlement{
		Fact:      domain.SettlementFact{ID: "OTHER", LedgerTxHash: testHash()},
		Reference: domain.TransactionReference{UETR: "aa6305c9-1f7f-49de-aed0-16487c27b42d", Sequence: 9},
	}

	lookups := 0
	f.settlementRepo.GetByTxHashFunc = func(ctx context.Context, hash string) (*domain.RecordedSettlement, error) {
		lookups++
		if lookups == 1 {
			// Fast path misses; a concurrent writer commits in between.
			return nil, domain.ErrSettlementNotFound
		}
		return existing, nil
	}
	f.settlementRepo.CreateTxFunc = func(ctx context.Context, tx usecase.Transaction, fact *domain.SettlementFact, ref domain.TransactionReference) error {
		return domain.ErrDuplicateSettlement
	}

	result, err := f.uc.ProcessSettlement(context.Background(), validConfirmation(), "tester")
	if !errors.Is(err, domain.ErrDuplicateSettlement) {
		t.Fatalf("expected ErrDuplicateSettlement, got %v", err)
	}

	if !result.AlreadyRecorded {
		t.Error("AlreadyRecorded not set after losing the race")
	}

	if result.UETR != existing.Reference.UETR {
		t.Errorf("race not resolved to committed reference: got %q", result.UETR)
	}
}

func TestBridgeUseCase_ProcessSettlement_PersistenceFailure(t *testing.T) {
	f := newBridgeFixture()

	f.settlementRepo.CreateTxFunc = func(ctx context.Context, tx usecase.Transaction, fact *domain.SettlementFact, ref domain.TransactionReference) error {
		return errors.New("connection reset")
	}

	result, err := f.uc.ProcessSettlement(context.Background(), validConfirmation(), "tester")
	if !errors.Is(err, domain.ErrPersistenceFailure) {
		t.Fatalf("expected ErrPersistenceFailure, got %v", err)
	}

	if result.State != usecase.StateCommitFailed {
		t.Errorf("state: got %q, want commit_failed", result.State)
	}

	entries := f.auditRepo.Entries()
	if len(entries) != 1 || entries[0].Status != string(domain.AuditStatusFailure) {
		t.Errorf("expected one failure audit entry, got %+v", entries)
	}
}

func TestBridgeUseCase_ProcessSettlement_ReferenceGenerationFailure(t *testing.T) {
	f := newBridgeFixture()

	refGen := mocks.NewMockReferenceGenerator(testRef())
	refGen.GenerateFunc = func() (domain.TransactionReference, error) {
		return domain.TransactionReference{}, errors.New("entropy exhausted")
	}

	f.uc = usecase.NewBridgeUseCase(
		mocks.NewMockTxManager(),
		f.settlementRepo,
		f.messageRepo,
		f.auditRepo,
		refGen,
		mocks.NewMockIDGenerator(),
		mocks.MockRetrier{},
		zerolog.Nop(),
	)

	result, err := f.uc.ProcessSettlement(context.Background(), validConfirmation(), "tester")
	if !errors.Is(err, domain.ErrSynthesisFailure) {
		t.Fatalf("expected ErrSynthesisFailure, got %v", err)
	}

	if result.State != usecase.StateSynthesisFailed {
		t.Errorf("state: got %q, want synthesis_failed", result.State)
	}
}
