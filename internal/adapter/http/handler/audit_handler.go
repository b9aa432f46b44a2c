package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/isobridge/internal/adapter/http/dto"
	"github.com/iho/isobridge/internal/usecase"
)

// AuditHandler serves the audit trail.
type AuditHandler struct {
	queryUC *usecase.QueryUseCase
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(queryUC *usecase.QueryUseCase) *AuditHandler {
	return &AuditHandler{queryUC: queryUC}
}

// GetTrail retrieves audit entries for a subject, newest first.
func (h *AuditHandler) GetTrail(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	if subjectID == "" {
		writeError(w, http.StatusBadRequest, "missing subject ID", "")
		return
	}

	entries, err := h.queryUC.GetAuditTrail(r.Context(), subjectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get audit trail", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditEntriesFromDomain(entries))
}
