package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avialine/crew-recovery/internal/domain/models"
	"github.com/avialine/crew-recovery/internal/domain/ports"
)

type CrewHandler struct {
	log       *zap.Logger
	store     ports.DutyStore
	directory ports.CrewDirectory
	validate  *validator.Validate
}

func NewCrewHandler(log *zap.Logger, store ports.DutyStore, directory ports.CrewDirectory, validate *validator.Validate) *CrewHandler {
	return &CrewHandler{
		log:       log,
		store:     store,
		directory: directory,
		validate:  validate,
	}
}

// Duty serves GET and PUT on /v1/crew/{id}/duty.
func (h *CrewHandler) Duty(w http.ResponseWriter, r *http.Request) {
	crewID, ok := parseCrewIDFromPath(r.URL.Path)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid path, expected /v1/crew/{id}/duty")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getDuty(w, r, crewID)
	case http.MethodPut:
		h.putDuty(w, r, crewID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *CrewHandler) getDuty(w http.ResponseWriter, r *http.Request, crewID models.CrewID) {
	identity, err := h.directory.GetIdentity(r.Context(), crewID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	state, err := h.store.Get(r.Context(), crewID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DutyResponse{
		Identity: toIdentityDTO(identity),
		State:    toDutyStateDTO(state),
	})
}

func (h *CrewHandler) putDuty(w http.ResponseWriter, r *http.Request, crewID models.CrewID) {
	var req PutDutyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Identity.CrewID != string(crewID) {
		writeError(w, http.StatusBadRequest, "identity crew_id does not match path")
		return
	}
	if req.State.CrewID == "" {
		req.State.CrewID = string(crewID)
	}
	if req.State.CrewID != string(crewID) {
		writeError(w, http.StatusBadRequest, "state crew_id does not match path")
		return
	}

	if err := h.directory.PutIdentity(r.Context(), toIdentity(req.Identity)); err != nil {
		writeDomainError(w, err)
		return
	}
	state := toDutyState(req.State)
	if err := h.store.Put(r.Context(), state); err != nil {
		writeDomainError(w, err)
		return
	}

	h.log.Info("duty record replaced", zap.String("crew_id", string(crewID)), zap.String("status", req.State.Status))
	writeJSON(w, http.StatusOK, DutyResponse{
		Identity: req.Identity,
		State:    toDutyStateDTO(state),
	})
}

func parseCrewIDFromPath(path string) (models.CrewID, bool) {
	const prefix = "/v1/crew/"
	const suffix = "/duty"
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}

	idPart := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	idPart = strings.Trim(idPart, "/")
	if idPart == "" || strings.Contains(idPart, "/") {
		return "", false
	}
	return models.CrewID(idPart), true
}
