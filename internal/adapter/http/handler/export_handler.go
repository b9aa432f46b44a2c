package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/isobridge/internal/adapter/http/dto"
	"github.com/iho/isobridge/internal/usecase"
)

// ExportHandler serves the persisted message set for a settlement.
type ExportHandler struct {
	queryUC *usecase.QueryUseCase
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(queryUC *usecase.QueryUseCase) *ExportHandler {
	return &ExportHandler{queryUC: queryUC}
}

// Messages exports the messages generated for a settlement, byte-identical
// to what was committed.
func (h *ExportHandler) Messages(w http.ResponseWriter, r *http.Request) {
	uetr := chi.URLParam(r, "uetr")
	if uetr == "" {
		writeError(w, http.StatusBadRequest, "missing UETR", "")
		return
	}

	messages, err := h.queryUC.ExportMessages(r.Context(), uetr, actorFrom(r))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to export messages", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.MessagesFromDomain(messages))
}

// MessagesByRange exports persisted messages created within a time range,
// across all settlements.
func (h *ExportHandler) MessagesByRange(w http.ResponseWriter, r *http.Request) {
	input := usecase.ExportByRangeInput{
		From:   parseTimeQuery(r, "from", time.Time{}),
		To:     parseTimeQuery(r, "to", time.Time{}),
		Limit:  parseIntQuery(r, "limit", 0),
		Offset: parseIntQuery(r, "offset", 0),
	}

	messages, err := h.queryUC.ExportMessagesByRange(r.Context(), input, actorFrom(r))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to export messages", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.MessagesFromDomain(messages))
}

// Message serves one persisted message by its ID.
func (h *ExportHandler) Message(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing message ID", "")
		return
	}

	msg, err := h.queryUC.GetMessage(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get message", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.MessageFromDomain(msg))
}
