package commands

import (
	"fmt"
	"time"

	"github.com/avialine/crew-recovery/internal/clients/recoveryapi"
)

// AppContext holds the dependencies shared by every crewctl command.
type AppContext struct {
	Client *recoveryapi.Client
}

func parseInstant(flag, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected RFC 3339 instant (e.g. 2026-03-14T13:00:00Z): %w", flag, err)
	}
	return t.UTC(), nil
}
