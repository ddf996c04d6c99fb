package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/avialine/crew-recovery/cmd/crewctl/commands"
	"github.com/avialine/crew-recovery/internal/clients/recoveryapi"
)

var (
	addr    string
	timeout time.Duration
	app     *commands.AppContext
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "crewctl",
		Short: "Operator CLI for the crew-recovery service",
		Long:  `crewctl checks duty legality, searches ranked replacements, and executes crew swaps against a running crew-recovery service.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.Client = recoveryapi.NewClient(addr, timeout)
		},
	}

	rootCmd.PersistentFlags().StringVar(&addr, "addr", "http://localhost:8080", "crew-recovery API address")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")

	app = &commands.AppContext{}
	rootCmd.AddCommand(
		commands.LegalityCmd(app),
		commands.ReplacementsCmd(app),
		commands.SwapCmd(app),
		commands.DutyCmd(app),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
