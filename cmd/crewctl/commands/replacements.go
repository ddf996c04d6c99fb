package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	api "github.com/avialine/crew-recovery/internal/transport/http"
)

// ReplacementsCmd searches the reserve pool for legal, ranked replacements.
func ReplacementsCmd(app *AppContext) *cobra.Command {
	var (
		flight    string
		position  string
		departure string
		base      string
		aircraft  string
		max       int
		deadhead  bool
		strategy  string
	)

	cmd := &cobra.Command{
		Use:   "replacements",
		Short: "Find ranked replacement candidates for an open position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			departureUTC, err := parseInstant("departure", departure)
			if err != nil {
				return err
			}

			resp, err := app.Client.FindReplacements(cmd.Context(), api.ReplacementSearchRequest{
				FlightNumber:    flight,
				Position:        position,
				DepartureUTC:    departureUTC,
				Base:            base,
				AircraftType:    aircraft,
				MaxResults:      max,
				IncludeDeadhead: deadhead,
				Strategy:        strategy,
			})
			if err != nil {
				return fmt.Errorf("replacement search: %w", err)
			}

			fmt.Printf("pool %d, evaluated %d, returned %d\n", resp.PoolSize, resp.Evaluated, len(resp.Candidates))
			if resp.Partial {
				color.Yellow("partial result: search budget ran out before the full pool was evaluated")
			}
			fmt.Println()

			for i, c := range resp.Candidates {
				color.Cyan("%2d. %s (%s)  score %.1f", i+1, c.Name, c.CrewID, c.Score)
				fmt.Printf("    total cost %s  (pay %s, deadhead %s, hotel %s, overtime %s)\n",
					c.Cost.Total, c.Cost.PayCredit, c.Cost.DeadheadCost, c.Cost.HotelCost, c.Cost.OvertimePremium)
				if c.Logistics.PositioningRequired {
					fmt.Printf("    positioning via %s, %d min travel, ready %s\n",
						c.Logistics.PositioningFlight, c.Logistics.TravelMinutes, c.Logistics.ReadyAtUTC)
				}
				for _, w := range c.Verdict.Warnings {
					color.Yellow("    [%s] %s", w.Severity, w.Description)
				}
			}
			if len(resp.Candidates) == 0 {
				fmt.Println("no legal candidates found")
			}

			for _, s := range resp.Skipped {
				color.Yellow("skipped %s: %s", s.CrewID, s.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flight, "flight", "", "flight number needing a replacement")
	cmd.Flags().StringVar(&position, "position", "", "position code (CPT, FO, PUR, FA)")
	cmd.Flags().StringVar(&departure, "departure", "", "departure instant (RFC 3339 UTC)")
	cmd.Flags().StringVar(&base, "base", "", "departure base code")
	cmd.Flags().StringVar(&aircraft, "aircraft", "", "aircraft type code")
	cmd.Flags().IntVar(&max, "max", 5, "maximum candidates to return")
	cmd.Flags().BoolVar(&deadhead, "deadhead", false, "include candidates that need deadhead positioning")
	cmd.Flags().StringVar(&strategy, "strategy", "", "ranking strategy: cost, fairness, or seniority")
	for _, required := range []string{"flight", "position", "departure", "base", "aircraft"} {
		_ = cmd.MarkFlagRequired(required)
	}

	return cmd
}
