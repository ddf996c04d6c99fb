package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avialine/crew-recovery/internal/application/service"
	"github.com/avialine/crew-recovery/internal/domain/ports"
	"github.com/avialine/crew-recovery/internal/observability"
)

// NewRouter wires every API route. The metrics collector is optional; without
// it the /metrics endpoint is simply absent.
func NewRouter(
	log *zap.Logger,
	recovery *service.RecoveryService,
	store ports.DutyStore,
	directory ports.CrewDirectory,
	metrics *observability.Collector,
) *http.ServeMux {
	validate := validator.New()

	legality := NewLegalityHandler(log, recovery, validate)
	search := NewRecoveryHandler(log, recovery, validate)
	crew := NewCrewHandler(log, store, directory, validate)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/legality/check", legality.Check)
	mux.HandleFunc("/v1/replacements", search.FindReplacements)
	mux.HandleFunc("/v1/crew/swap", search.ExecuteSwap)
	mux.HandleFunc("/v1/crew/", crew.Duty)
	mux.HandleFunc("/healthz", healthHandler)
	if metrics != nil {
		mux.Handle("/metrics", metrics.Handler())
	}

	return mux
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
