package handler

import (
	"encoding/json"
	"net/http"

	"github.com/iho/isobridge/internal/adapter/http/dto"
	"github.com/iho/isobridge/internal/usecase"
)

// StatementHandler handles statement generation requests.
type StatementHandler struct {
	statementUC *usecase.StatementUseCase
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementUC *usecase.StatementUseCase) *StatementHandler {
	return &StatementHandler{statementUC: statementUC}
}

// Generate builds a camt.053 statement for a party over a closed period.
// An empty period returns 404.
func (h *StatementHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	msg, err := h.statementUC.GenerateStatement(r.Context(), req.ToUseCaseInput(actorFrom(r)))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to generate statement", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.MessageFromDomain(msg))
}
