package commands

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	api "github.com/avialine/crew-recovery/internal/transport/http"
)

// LegalityCmd checks whether a single-segment proposed duty period is legal
// for a crew member.
func LegalityCmd(app *AppContext) *cobra.Command {
	var (
		crewID      string
		report      string
		release     string
		flightID    string
		origin      string
		destination string
		departure   string
		arrival     string
		flightTime  time.Duration
		categories  []string
	)

	cmd := &cobra.Command{
		Use:   "legality",
		Short: "Check a proposed duty period against the duty-time rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reportUTC, err := parseInstant("report", report)
			if err != nil {
				return err
			}
			releaseUTC, err := parseInstant("release", release)
			if err != nil {
				return err
			}
			departureUTC, err := parseInstant("departure", departure)
			if err != nil {
				return err
			}
			arrivalUTC, err := parseInstant("arrival", arrival)
			if err != nil {
				return err
			}

			verdict, err := app.Client.CheckLegality(cmd.Context(), api.LegalityCheckRequest{
				CrewID: crewID,
				Period: api.PeriodDTO{
					Segments: []api.SegmentDTO{{
						FlightID:          flightID,
						Origin:            origin,
						Destination:       destination,
						DepartureUTC:      departureUTC,
						ArrivalUTC:        arrivalUTC,
						FlightTimeMinutes: int64(flightTime.Minutes()),
					}},
					ReportUTC:  reportUTC,
					ReleaseUTC: releaseUTC,
				},
				Categories: categories,
			})
			if err != nil {
				return fmt.Errorf("legality check: %w", err)
			}

			printVerdict(verdict)
			return nil
		},
	}

	cmd.Flags().StringVar(&crewID, "crew", "", "crew member id")
	cmd.Flags().StringVar(&report, "report", "", "report instant (RFC 3339 UTC)")
	cmd.Flags().StringVar(&release, "release", "", "release instant (RFC 3339 UTC)")
	cmd.Flags().StringVar(&flightID, "flight", "", "flight id of the proposed segment")
	cmd.Flags().StringVar(&origin, "origin", "", "segment origin airport code")
	cmd.Flags().StringVar(&destination, "destination", "", "segment destination airport code")
	cmd.Flags().StringVar(&departure, "departure", "", "segment departure instant (RFC 3339 UTC)")
	cmd.Flags().StringVar(&arrival, "arrival", "", "segment arrival instant (RFC 3339 UTC)")
	cmd.Flags().DurationVar(&flightTime, "flight-time", 0, "segment block time (e.g. 4h)")
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "rule categories to evaluate (default: all)")
	for _, required := range []string{"crew", "report", "release", "flight", "departure", "arrival"} {
		_ = cmd.MarkFlagRequired(required)
	}

	return cmd
}

func printVerdict(verdict api.VerdictDTO) {
	if verdict.Legal {
		color.Green("LEGAL")
	} else {
		color.Red("ILLEGAL")
	}
	fmt.Printf("audit id: %s  evaluated: %s  categories: %v\n\n",
		verdict.AuditID, verdict.EvaluatedAt.Format(time.RFC3339), verdict.Categories)

	for _, v := range verdict.Violations {
		color.Red("  [%s] %s: %s", v.Severity, v.Rule, v.Description)
		if v.Remediation != "" {
			fmt.Printf("    remediation: %s\n", v.Remediation)
		}
	}
	for _, w := range verdict.Warnings {
		color.Yellow("  [%s] %s: %s", w.Severity, w.Rule, w.Description)
	}
	if len(verdict.Violations) == 0 && len(verdict.Warnings) == 0 {
		fmt.Println("  no findings")
	}
}
