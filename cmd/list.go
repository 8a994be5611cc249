package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forestar-be/forestar-facturation/internal/logger"
	"github.com/forestar-be/forestar-facturation/internal/view"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List reconciliations",
	Long: `List the reconciliations known to the API with their status, file names
and match counts. Reconciliations without a title are shown as
"Réconciliation du <date>".`,
	Example: `  # List reconciliations
  recondesk list

  # Output as JSON
  recondesk list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("json", false, "Output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("list")

	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContext(cmd, log)
	defer cancel()

	list, err := client.ListReconciliations(ctx)
	if err != nil {
		return handleAPIError(err, log)
	}

	log.Debug().Int("count", len(list)).Msg("Reconciliations fetched")

	if jsonOutput {
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(list) == 0 {
		fmt.Println("Aucune réconciliation.")
		return nil
	}

	loc := cfg.Location()
	fmt.Printf("%-36s  %-32s  %-10s  %8s  %8s  %7s\n", "ID", "Titre", "Statut", "Factures", "Trans.", "Taux")
	fmt.Println(strings.Repeat("-", 112))
	for i := range list {
		r := &list[i]
		fmt.Printf("%-36s  %-32s  %-10s  %8d  %8d  %6.1f%%\n",
			r.ID,
			truncate(r.DisplayTitle(loc), 32),
			view.StatusLabel(r.Status),
			r.TotalInvoices,
			r.TotalTransactions,
			r.ReconciliationRate,
		)
	}
	return nil
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
