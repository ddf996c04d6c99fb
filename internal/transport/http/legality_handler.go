package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avialine/crew-recovery/internal/application/service"
	"github.com/avialine/crew-recovery/internal/domain/models"
)

type LegalityHandler struct {
	log      *zap.Logger
	recovery *service.RecoveryService
	validate *validator.Validate
}

func NewLegalityHandler(log *zap.Logger, recovery *service.RecoveryService, validate *validator.Validate) *LegalityHandler {
	return &LegalityHandler{
		log:      log,
		recovery: recovery,
		validate: validate,
	}
}

func (h *LegalityHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req LegalityCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories := req.Categories
	if len(categories) == 0 {
		categories = []string{models.CategoryDutyLimits, models.CategoryFatigueRisk}
	}

	verdict, err := h.recovery.CheckLegality(r.Context(), models.CrewID(req.CrewID), toPeriod(req.Period), categories)
	if err != nil {
		h.log.Warn("legality check failed", zap.String("crew_id", req.CrewID), zap.Error(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toVerdictDTO(verdict))
}
