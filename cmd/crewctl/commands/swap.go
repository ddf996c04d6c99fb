package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	api "github.com/avialine/crew-recovery/internal/transport/http"
)

// SwapCmd executes a crew swap on a flight.
func SwapCmd(app *AppContext) *cobra.Command {
	var (
		flight   string
		outgoing string
		incoming string
		park     string
		report   string
		release  string
	)

	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap a flight from an on-duty member to a reserve member",
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

			resp, err := app.Client.ExecuteSwap(cmd.Context(), api.SwapRequest{
				FlightID:   flight,
				OutgoingID: outgoing,
				IncomingID: incoming,
				ParkStatus: park,
				ReportUTC:  reportUTC,
				ReleaseUTC: releaseUTC,
			})
			if err != nil {
				return fmt.Errorf("swap: %w", err)
			}

			color.Green("swap executed on %s", flight)
			fmt.Printf("  outgoing %s -> %s\n", resp.Outgoing.CrewID, resp.Outgoing.Status)
			fmt.Printf("  incoming %s -> %s (callouts %d)\n",
				resp.Incoming.CrewID, resp.Incoming.Status, resp.Incoming.RecentCallouts)
			return nil
		},
	}

	cmd.Flags().StringVar(&flight, "flight", "", "flight id being reassigned")
	cmd.Flags().StringVar(&outgoing, "outgoing", "", "crew id coming off the flight")
	cmd.Flags().StringVar(&incoming, "incoming", "", "reserve crew id taking the flight")
	cmd.Flags().StringVar(&park, "park", "", "status for the outgoing member: RESERVE (default) or OFF")
	cmd.Flags().StringVar(&report, "report", "", "duty report instant (RFC 3339 UTC)")
	cmd.Flags().StringVar(&release, "release", "", "duty release instant (RFC 3339 UTC)")
	for _, required := range []string{"flight", "outgoing", "incoming", "report", "release"} {
		_ = cmd.MarkFlagRequired(required)
	}

	return cmd
}

// DutyCmd fetches a crew member's identity and current duty record.
func DutyCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "duty <crew-id>",
		Short: "Show a crew member's current duty record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app.Client.GetDuty(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get duty: %w", err)
			}

			color.Cyan("%s (%s) %s @ %s, seniority %d",
				resp.Identity.Name, resp.Identity.CrewID, resp.Identity.Position,
				resp.Identity.HomeBase, resp.Identity.SeniorityRank)
			fmt.Printf("  status %s at %s, window %s .. %s\n",
				resp.State.Status, resp.State.Location, resp.State.WindowStart, resp.State.WindowEnd)
			fmt.Printf("  cycle duty %.1fh, 28d flight %.1fh, 365d flight %.1fh, %d consecutive days\n",
				resp.State.DutyHoursCycle, resp.State.FlightHours28Day,
				resp.State.FlightHours365Day, resp.State.ConsecutiveDutyDays)
			if len(resp.State.AssignedFlights) > 0 {
				fmt.Printf("  flights: %v\n", resp.State.AssignedFlights)
			}
			return nil
		},
	}
}
