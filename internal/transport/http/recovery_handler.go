package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avialine/crew-recovery/internal/application/service"
)

type RecoveryHandler struct {
	log      *zap.Logger
	recovery *service.RecoveryService
	validate *validator.Validate
}

func NewRecoveryHandler(log *zap.Logger, recovery *service.RecoveryService, validate *validator.Validate) *RecoveryHandler {
	return &RecoveryHandler{
		log:      log,
		recovery: recovery,
		validate: validate,
	}
}

func (h *RecoveryHandler) FindReplacements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ReplacementSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.recovery.FindReplacements(r.Context(), toSearchRequest(req))
	if err != nil {
		h.log.Warn("replacement search failed", zap.String("flight", req.FlightNumber), zap.Error(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSearchResponse(outcome))
}

func (h *RecoveryHandler) ExecuteSwap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.recovery.ExecuteSwap(r.Context(), toSwapRequest(req))
	if err != nil {
		h.log.Warn("swap failed",
			zap.String("flight", req.FlightID),
			zap.String("outgoing", req.OutgoingID),
			zap.String("incoming", req.IncomingID),
			zap.Error(err),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SwapResponse{
		Outgoing: toDutyStateDTO(result.Outgoing),
		Incoming: toDutyStateDTO(result.Incoming),
	})
}
