package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/isobridge/internal/adapter/http/dto"
	"github.com/iho/isobridge/internal/domain"
	"github.com/iho/isobridge/internal/usecase"
)

// BridgeHandler handles settlement ingestion and retrieval requests.
type BridgeHandler struct {
	bridgeUC *usecase.BridgeUseCase
	queryUC  *usecase.QueryUseCase
}

// NewBridgeHandler creates a new BridgeHandler.
func NewBridgeHandler(bridgeUC *usecase.BridgeUseCase, queryUC *usecase.QueryUseCase) *BridgeHandler {
	return &BridgeHandler{
		bridgeUC: bridgeUC,
		queryUC:  queryUC,
	}
}

// Submit ingests one finalized ledger confirmation. A resubmission of an
// already recorded transaction hash returns 409 together with the reference
// assigned to the original settlement.
func (h *BridgeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.bridgeUC.ProcessSettlement(r.Context(), req.ToConfirmation(), actorFrom(r))
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateSettlement) {
			writeJSON(w, http.StatusConflict, dto.BridgeResultFromUseCase(result))
			return
		}

		status := mapDomainError(err)
		writeError(w, status, "failed to process settlement", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.BridgeResultFromUseCase(result))
}

// Get retrieves a recorded settlement by its UETR.
func (h *BridgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	uetr := chi.URLParam(r, "uetr")
	if uetr == "" {
		writeError(w, http.StatusBadRequest, "missing UETR", "")
		return
	}

	record, err := h.queryUC.GetSettlement(r.Context(), uetr)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get settlement", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(record))
}

// ListByParty lists recorded settlements for a party within a time range.
func (h *BridgeHandler) ListByParty(w http.ResponseWriter, r *http.Request) {
	party := chi.URLParam(r, "id")
	if party == "" {
		writeError(w, http.StatusBadRequest, "missing party ID", "")
		return
	}

	now := time.Now().UTC()

	records, err := h.queryUC.ListByParty(r.Context(), usecase.ListByPartyInput{
		Party:  party,
		From:   parseTimeQuery(r, "from", now.AddDate(0, -1, 0)),
		To:     parseTimeQuery(r, "to", now),
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list settlements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementsFromDomain(records))
}
