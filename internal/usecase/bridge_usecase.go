package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/isobridge/internal/domain"
	"github.com/iho/isobridge/internal/infrastructure/metrics"
	"github.com/iho/isobridge/internal/iso20022"
)

// BridgeState is the terminal state of one ProcessSettlement request.
type BridgeState string

const (
	StateReceived        BridgeState = "received"
	StateCommitted       BridgeState = "committed"
	StateRejected        BridgeState = "rejected"
	StateSynthesisFailed BridgeState = "synthesis_failed"
	StateCommitFailed    BridgeState = "commit_failed"
)

// BridgeResult is the handle returned to the caller after processing a
// confirmation. On duplicate submission it carries the reference assigned
// to the original settlement.
type BridgeResult struct {
	State           BridgeState
	UETR            string
	Sequence        uint64
	SettlementID    string
	ExplorerURL     string
	Messages        []*domain.FinancialMessage
	AlreadyRecorded bool
}

// BridgeUseCase drives a confirmation through validation, reference
// assignment, synthesis and the atomic consolidation commit. It holds no
// state beyond its collaborators; every invocation is independent.
type BridgeUseCase struct {
	txManager      TransactionManager
	settlementRepo SettlementRepository
	messageRepo    MessageRepository
	auditRepo      AuditRepository
	refGen         ReferenceGenerator
	idGen          IDGenerator
	retrier        Retrier
	logger         zerolog.Logger
}

// NewBridgeUseCase creates a new BridgeUseCase.
func NewBridgeUseCase(
	txManager TransactionManager,
	settlementRepo SettlementRepository,
	messageRepo MessageRepository,
	auditRepo AuditRepository,
	refGen ReferenceGenerator,
	idGen IDGenerator,
	retrier Retrier,
	logger zerolog.Logger,
) *BridgeUseCase {
	return &BridgeUseCase{
		txManager:      txManager,
		settlementRepo: settlementRepo,
		messageRepo:    messageRepo,
		auditRepo:      auditRepo,
		refGen:         refGen,
		idGen:          idGen,
		retrier:        retrier,
		logger:         logger,
	}
}

// ProcessSettlement runs the per-request state machine:
// Received -> Validated -> Synthesized -> Committed, with Rejected,
// SynthesisFailed and CommitFailed as failure terminals. Exactly one audit
// entry is written before returning, success or failure.
func (uc *BridgeUseCase) ProcessSettlement(ctx context.Context, conf domain.LedgerConfirmation, actor string) (result *BridgeResult, err error) {
	result = &BridgeResult{State: StateReceived}

	defer func() {
		uc.writeAudit(ctx, actor, conf, result, err)
		metrics.SettlementsProcessed.WithLabelValues(string(result.State)).Inc()
	}()

	now := time.Now().UTC()

	// Received -> Validated | Rejected
	fact, err := domain.FromLedgerConfirmation(conf, now)
	if err != nil {
		result.State = StateRejected
		return result, err
	}

	if fact.Status != domain.SettlementConfirmed {
		result.State = StateRejected
		err = &domain.ValidationError{Field: "status", Reason: "ledger reported failure; nothing to bridge"}

		return result, err
	}

	// Fast path for resubmissions; the unique constraint inside the commit
	// transaction remains the authoritative guard.
	if existing, lookupErr := uc.settlementRepo.GetByTxHash(ctx, fact.LedgerTxHash); lookupErr == nil {
		result.State = StateCommitFailed
		result.AlreadyRecorded = true
		result.UETR = existing.Reference.UETR
		result.Sequence = existing.Reference.Sequence
		result.SettlementID = existing.Fact.ID
		metrics.DuplicateSubmissions.Inc()
		err = domain.ErrDuplicateSettlement

		return result, err
	}

	// Validated -> Synthesized | SynthesisFailed
	ref, err := uc.refGen.Generate()
	if err != nil {
		result.State = StateSynthesisFailed
		err = fmt.Errorf("%w: reference generation: %v", domain.ErrSynthesisFailure, err)

		return result, err
	}

	fact.ID = uc.idGen.Generate()

	messages, err := uc.synthesize(fact, ref)
	if err != nil {
		result.State = StateSynthesisFailed
		return result, err
	}

	// Synthesized -> Committed | CommitFailed
	commitStart := time.Now()

	err = uc.retrier.Retry(ctx, func() error {
		return uc.commit(ctx, fact, ref, messages)
	})

	metrics.CommitDuration.Observe(time.Since(commitStart).Seconds())

	if err != nil {
		result.State = StateCommitFailed

		if errors.Is(err, domain.ErrDuplicateSettlement) {
			// Lost a concurrent race on the same hash; resolve to the
			// committed reference so the caller sees "already recorded".
			result.AlreadyRecorded = true
			if existing, lookupErr := uc.settlementRepo.GetByTxHash(ctx, fact.LedgerTxHash); lookupErr == nil {
				result.UETR = existing.Reference.UETR
				result.Sequence = existing.Reference.Sequence
				result.SettlementID = existing.Fact.ID
			}

			metrics.DuplicateSubmissions.Inc()

			return result, err
		}

		err = fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)

		return result, err
	}

	for _, msg := range messages {
		metrics.MessagesGenerated.WithLabelValues(string(msg.Type)).Inc()
	}

	result.State = StateCommitted
	result.UETR = ref.UETR
	result.Sequence = ref.Sequence
	result.SettlementID = fact.ID
	result.ExplorerURL = fact.ExplorerURL()
	result.Messages = messages

	return result, nil
}

// synthesize builds the per-settlement message pair. Given the same fact and
// reference the bodies are byte-identical.
func (uc *BridgeUseCase) synthesize(fact *domain.SettlementFact, ref domain.TransactionReference) ([]*domain.FinancialMessage, error) {
	start := time.Now()
	defer func() {
		metrics.SynthesisDuration.Observe(time.Since(start).Seconds())
	}()

	creditBody, err := iso20022.BuildCreditTransfer(fact, ref)
	if err != nil {
		return nil, err
	}

	notificationBody, err := iso20022.BuildNotification(fact, ref)
	if err != nil {
		return nil, err
	}

	return []*domain.FinancialMessage{
		{
			ID:           uc.idGen.Generate(),
			SettlementID: fact.ID,
			Type:         domain.MessageCreditTransfer,
			UETR:         ref.UETR,
			Body:         creditBody,
			Checksum:     domain.BodyChecksum(creditBody),
			CreatedAt:    ref.AssignedAt,
		},
		{
			ID:           uc.idGen.Generate(),
			SettlementID: fact.ID,
			Type:         domain.MessageNotification,
			UETR:         ref.UETR,
			Body:         notificationBody,
			Checksum:     domain.BodyChecksum(notificationBody),
			CreatedAt:    ref.AssignedAt,
		},
	}, nil
}

// commit persists the fact, its reference and all messages in one
// transaction. Once begun it is never cancelled; it either applies fully or
// rolls back.
func (uc *BridgeUseCase) commit(ctx context.Context, fact *domain.SettlementFact, ref domain.TransactionReference, messages []*domain.FinancialMessage) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.settlementRepo.CreateTx(ctx, tx, fact, ref); err != nil {
		return err
	}

	for _, msg := range messages {
		if err := uc.messageRepo.CreateTx(ctx, tx, msg); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (uc *BridgeUseCase) writeAudit(ctx context.Context, actor string, conf domain.LedgerConfirmation, result *BridgeResult, opErr error) {
	status := domain.AuditStatusSuccess
	errMsg := ""

	if result.State != StateCommitted {
		status = domain.AuditStatusFailure
		if opErr != nil {
			errMsg = opErr.Error()
		}
	}

	subjectID := result.UETR
	if subjectID == "" {
		subjectID = domain.NormalizeTxHash(conf.TxHash)
	}

	entry := &domain.AuditEntry{
		ID:          uc.idGen.Generate(),
		Actor:       actor,
		Action:      string(domain.AuditActionSettlementProcess),
		SubjectType: "settlement",
		SubjectID:   subjectID,
		Input: domain.JSON{
			"tx_hash":             domain.NormalizeTxHash(conf.TxHash),
			"source_party":        conf.SourceParty,
			"beneficiary_party":   conf.BeneficiaryParty,
			"instructed_amount":   conf.InstructedAmount.String(),
			"instructed_currency": conf.InstructedCurrency,
			"settled_amount":      conf.SettledAmount.String(),
			"settled_asset":       conf.SettledAsset,
		},
		Output: domain.JSON{
			"state":    string(result.State),
			"uetr":     result.UETR,
			"messages": len(result.Messages),
		},
		Status:       string(status),
		ErrorMessage: errMsg,
		CreatedAt:    time.Now().UTC(),
	}

	if err := uc.auditRepo.Create(ctx, entry); err != nil {
		uc.logger.Error().Err(err).Str("subject_id", subjectID).Msg("failed to write audit entry")
		metrics.AuditEntriesWritten.WithLabelValues("error").Inc()

		return
	}

	metrics.AuditEntriesWritten.WithLabelValues(string(status)).Inc()
}
