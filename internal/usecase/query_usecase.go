package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/isobridge/internal/domain"
	"github.com/iho/isobridge/internal/infrastructure/metrics"
)

const exportCacheTTL = 10 * time.Minute

// QueryUseCase serves the read-only projections exposed to the UI
// collaborators: lookups by reference, party listings, message export and
// audit trail retrieval. It never mutates persisted state.
type QueryUseCase struct {
	settlementRepo SettlementRepository
	messageRepo    MessageRepository
	auditRepo      AuditRepository
	idGen          IDGenerator
	cache          Cache
	logger         zerolog.Logger
}

// NewQueryUseCase creates a new QueryUseCase.
func NewQueryUseCase(
	settlementRepo SettlementRepository,
	messageRepo MessageRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cache Cache,
	logger zerolog.Logger,
) *QueryUseCase {
	return &QueryUseCase{
		settlementRepo: settlementRepo,
		messageRepo:    messageRepo,
		auditRepo:      auditRepo,
		idGen:          idGen,
		cache:          cache,
		logger:         logger,
	}
}

// GetSettlement retrieves a recorded settlement by its reference.
func (uc *QueryUseCase) GetSettlement(ctx context.Context, uetr string) (*domain.RecordedSettlement, error) {
	if !domain.ValidUETR(uetr) {
		return nil, domain.ErrSettlementNotFound
	}

	return uc.settlementRepo.GetByUETR(ctx, uetr)
}

// ListByPartyInput selects settlements for one party within a time range.
type ListByPartyInput struct {
	Party  string
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// ListByParty lists recorded settlements for a party within a range.
func (uc *QueryUseCase) ListByParty(ctx context.Context, input ListByPartyInput) ([]*domain.RecordedSettlement, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.settlementRepo.ListByParty(ctx, input.Party, input.From, input.To, input.Limit, input.Offset)
}

// ExportMessages returns the persisted message set for a reference,
// byte-identical to what was committed. Results are cached; bodies are
// immutable so the cache never serves stale content.
func (uc *QueryUseCase) ExportMessages(ctx context.Context, uetr, actor string) (messages []*domain.FinancialMessage, err error) {
	defer func() {
		uc.writeExportAudit(ctx, uetr, actor, messages, err)
	}()

	if !domain.ValidUETR(uetr) {
		return nil, domain.ErrMessageNotFound
	}

	cacheKey := "export:" + uetr

	if cached, cacheErr := uc.cache.Get(ctx, cacheKey); cacheErr == nil {
		var cachedMessages []*domain.FinancialMessage
		if json.Unmarshal(cached, &cachedMessages) == nil {
			messages = cachedMessages
			return messages, nil
		}
	}

	messages, err = uc.messageRepo.GetByUETR(ctx, uetr)
	if err != nil {
		return nil, err
	}

	if len(messages) == 0 {
		messages = nil
		err = domain.ErrMessageNotFound

		return nil, err
	}

	if encoded, encodeErr := json.Marshal(messages); encodeErr == nil {
		if cacheErr := uc.cache.Set(ctx, cacheKey, encoded, exportCacheTTL); cacheErr != nil {
			uc.logger.Warn().Err(cacheErr).Str("uetr", uetr).Msg("failed to cache export")
		}
	}

	return messages, nil
}

// ExportByRangeInput selects messages created within a time range.
type ExportByRangeInput struct {
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// ExportMessagesByRange returns persisted messages created within a time
// range, across all references. An empty result is not an error; unlike the
// by-reference export there is no single document set to miss. Range
// exports are not cached.
func (uc *QueryUseCase) ExportMessagesByRange(ctx context.Context, input ExportByRangeInput, actor string) (messages []*domain.FinancialMessage, err error) {
	subject := input.From.UTC().Format(time.RFC3339) + "/" + input.To.UTC().Format(time.RFC3339)

	defer func() {
		uc.writeExportAudit(ctx, subject, actor, messages, err)
	}()

	if input.From.IsZero() || input.To.IsZero() {
		err = &domain.ValidationError{Field: "range", Reason: "from and to are required"}
		return nil, err
	}

	if !input.From.Before(input.To) {
		err = &domain.ValidationError{Field: "range", Reason: "from must precede to"}
		return nil, err
	}

	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	messages, err = uc.messageRepo.ListByRange(ctx, input.From, input.To, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// GetMessage retrieves a single persisted message by its row ID.
func (uc *QueryUseCase) GetMessage(ctx context.Context, id string) (*domain.FinancialMessage, error) {
	return uc.messageRepo.GetByID(ctx, id)
}

// GetAuditTrail retrieves the audit entries for a subject reference.
func (uc *QueryUseCase) GetAuditTrail(ctx context.Context, subjectID string) ([]*domain.AuditEntry, error) {
	return uc.auditRepo.List(ctx, domain.AuditFilter{SubjectID: subjectID})
}

func (uc *QueryUseCase) writeExportAudit(ctx context.Context, uetr, actor string, messages []*domain.FinancialMessage, opErr error) {
	status := domain.AuditStatusSuccess
	errMsg := ""

	if opErr != nil {
		status = domain.AuditStatusFailure
		errMsg = opErr.Error()
	}

	entry := &domain.AuditEntry{
		ID:          uc.idGen.Generate(),
		Actor:       actor,
		Action:      string(domain.AuditActionMessageExport),
		SubjectType: "message",
		SubjectID:   uetr,
		Output: domain.JSON{
			"messages": len(messages),
		},
		Status:       string(status),
		ErrorMessage: errMsg,
		CreatedAt:    time.Now().UTC(),
	}

	if err := uc.auditRepo.Create(ctx, entry); err != nil {
		uc.logger.Error().Err(err).Str("uetr", uetr).Msg("failed to write audit entry")
		metrics.AuditEntriesWritten.WithLabelValues("error").Inc()

		return
	}

	metrics.AuditEntriesWritten.WithLabelValues(string(status)).Inc()
}
