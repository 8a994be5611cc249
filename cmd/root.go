package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forestar-be/forestar-facturation/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "recondesk",
	Short: "Recondesk - review and correct bank reconciliation results",
	Long: `Recondesk works on the invoice/bank transaction reconciliations computed
by the Forestar facturation API.

It uploads new invoice and transaction files, follows the reconciliation job
until it completes, and lets you search, filter, sort and export the matches,
resolve invoices with several competing transactions, and validate, reject or
create matches by hand. The same features are served to the web dashboard by
the serve command.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Recondesk executed")

		fmt.Println("Welcome to Recondesk!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
	rootCmd.PersistentFlags().Int("timeout", 0, "Timeout in seconds for the whole command (default: none)")
}
