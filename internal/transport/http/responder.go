package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	derr "github.com/avialine/crew-recovery/internal/domain/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps a domain error onto an HTTP status and relays its
// message verbatim.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, domainStatus(err), err.Error())
}

func domainStatus(err error) int {
	switch {
	case errors.Is(err, derr.ErrCrewNotFound):
		return http.StatusNotFound
	case errors.Is(err, derr.ErrInvalidInput), errors.Is(err, derr.ErrInvalidStrategy):
		return http.StatusBadRequest
	case errors.Is(err, derr.ErrSwapConflict):
		return http.StatusConflict
	case errors.Is(err, derr.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
