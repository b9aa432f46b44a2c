package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/isobridge/internal/domain"
	"github.com/iho/isobridge/internal/infrastructure/metrics"
	"github.com/iho/isobridge/internal/iso20022"
)

// statementListPageSize bounds one repository page while collecting the
// settlements of a period.
const statementListPageSize = 500

// StatementUseCase generates camt.053 account statements over a closed
// period. A new statement supersedes, never edits, a prior one.
type StatementUseCase struct {
	settlementRepo SettlementRepository
	messageRepo    MessageRepository
	auditRepo      AuditRepository
	idGen          IDGenerator
	logger         zerolog.Logger
}

// NewStatementUseCase creates a new StatementUseCase.
func NewStatementUseCase(
	settlementRepo SettlementRepository,
	messageRepo MessageRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
) *StatementUseCase {
	return &StatementUseCase{
		settlementRepo: settlementRepo,
		messageRepo:    messageRepo,
		auditRepo:      auditRepo,
		idGen:          idGen,
		logger:         logger,
	}
}

// GenerateStatementInput identifies the party and the closed time range.
type GenerateStatementInput struct {
	Party string
	From  time.Time
	To    time.Time
	Actor string
}

// GenerateStatement builds and persists an account statement for the party
// over [From, To]. A period with no confirmed settlements yields
// ErrEmptyPeriod; the caller decides whether that is acceptable.
func (uc *StatementUseCase) GenerateStatement(ctx context.Context, input GenerateStatementInput) (msg *domain.FinancialMessage, err error) {
	defer func() {
		uc.writeAudit(ctx, input, msg, err)
	}()

	if input.Party == "" {
		return nil, &domain.ValidationError{Field: "party", Reason: "party identifier is required"}
	}

	if input.From.IsZero() || input.To.IsZero() || !input.From.Before(input.To) {
		return nil, &domain.ValidationError{Field: "period", Reason: "range start must precede range end"}
	}

	records, err := uc.collectPeriod(ctx, input)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, domain.ErrEmptyPeriod
	}

	// Order by assignment sequence: the monotonic tie-break for export
	// batches.
	sort.Slice(records, func(i, j int) bool {
		return records[i].Reference.Sequence < records[j].Reference.Sequence
	})

	currency := records[0].Fact.InstructedCurrency

	lines := make([]iso20022.StatementLine, 0, len(records))
	references := make([]string, 0, len(records))
	periodSum := decimal.Zero

	for _, rec := range records {
		lines = append(lines, iso20022.StatementLine{
			UETR:       rec.Reference.UETR,
			EndToEndID: iso20022.EndToEndID(&rec.Fact),
			Amount:     rec.Fact.InstructedAmount,
			Currency:   rec.Fact.InstructedCurrency,
		})
		references = append(references, rec.Reference.UETR)
		periodSum = periodSum.Add(rec.Fact.InstructedAmount)
	}

	opening, err := uc.settlementRepo.SumInstructedByParty(ctx, input.Party, currency, input.From)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	statementID := uc.idGen.Generate()

	body, err := iso20022.BuildStatement(iso20022.StatementInput{
		StatementID:    statementID,
		Party:          input.Party,
		From:           input.From,
		To:             input.To,
		GeneratedAt:    now,
		Currency:       currency,
		OpeningBalance: opening,
		ClosingBalance: opening.Add(periodSum),
		Lines:          lines,
	})
	if err != nil {
		return nil, err
	}

	msg = &domain.FinancialMessage{
		ID:         statementID,
		Type:       domain.MessageStatement,
		References: references,
		Party:      input.Party,
		Body:       body,
		Checksum:   domain.BodyChecksum(body),
		CreatedAt:  now,
	}

	if err = uc.messageRepo.Create(ctx, msg); err != nil {
		msg = nil
		return nil, err
	}

	metrics.StatementsGenerated.Inc()
	metrics.MessagesGenerated.WithLabelValues(string(domain.MessageStatement)).Inc()

	return msg, nil
}

func (uc *StatementUseCase) collectPeriod(ctx context.Context, input GenerateStatementInput) ([]*domain.RecordedSettlement, error) {
	var records []*domain.RecordedSettlement

	offset := 0
	for {
		page, err := uc.settlementRepo.ListByParty(ctx, input.Party, input.From, input.To, statementListPageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, rec := range page {
			if rec.Fact.Status == domain.SettlementConfirmed {
				records = append(records, rec)
			}
		}

		if len(page) < statementListPageSize {
			return records, nil
		}

		offset += statementListPageSize
	}
}

func (uc *StatementUseCase) writeAudit(ctx context.Context, input GenerateStatementInput, msg *domain.FinancialMessage, opErr error) {
	status := domain.AuditStatusSuccess
	errMsg := ""
	subjectID := input.Party

	if opErr != nil {
		status = domain.AuditStatusFailure
		errMsg = opErr.Error()
	}

	if msg != nil {
		subjectID = msg.ID
	}

	entry := &domain.AuditEntry{
		ID:          uc.idGen.Generate(),
		Actor:       input.Actor,
		Action:      string(domain.AuditActionStatementGenerate),
		SubjectType: "statement",
		SubjectID:   subjectID,
		Input: domain.JSON{
			"party": input.Party,
			"from":  input.From.UTC().Format(time.RFC3339),
			"to":    input.To.UTC().Format(time.RFC3339),
		},
		Status:       string(status),
		ErrorMessage: errMsg,
		CreatedAt:    time.Now().UTC(),
	}

	if msg != nil {
		entry.Output = domain.JSON{
			"statement_id": msg.ID,
			"references":   len(msg.References),
		}
	}

	if err := uc.auditRepo.Create(ctx, entry); err != nil {
		uc.logger.Error().Err(err).Str("party", input.Party).Msg("failed to write audit entry")
		metrics.AuditEntriesWritten.WithLabelValues("error").Inc()

		return
	}

	metrics.AuditEntriesWritten.WithLabelValues(string(status)).Inc()
}
