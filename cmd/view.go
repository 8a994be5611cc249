package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/forestar-be/forestar-facturation/internal/logger"
	"github.com/forestar-be/forestar-facturation/internal/view"
	"github.com/forestar-be/forestar-facturation/pkg/models"
)

var viewCmd = &cobra.Command{
	Use:   "view [reconciliation-id]",
	Short: "Show the matches of a reconciliation",
	Long: `Show the matches of a reconciliation, one row per invoice.

Invoices with several competing transactions are shown as a single MULTIPLE
row listing every candidate; resolve them with the resolve command. Displayed
confidence reflects validation: validated and manual matches show 100, a
rejected match shows 0.`,
	Example: `  # First page in the default order
  recondesk view 3f2a...

  # Search and filter
  recondesk view 3f2a... --search dupont --filter MULTIPLE,MANUAL

  # Sort by amount, highest first, second page
  recondesk view 3f2a... --sort amount --dir desc --page 2

  # Statistics and unmatched records
  recondesk view 3f2a... --stats --unmatched`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	addViewFlags(viewCmd)
	viewCmd.Flags().IntP("page", "p", 1, "Page to show")
	viewCmd.Flags().Int("per-page", 0, "Rows per page (default: ITEMS_PER_PAGE)")
	viewCmd.Flags().Bool("json", false, "Output the page as JSON")
	viewCmd.Flags().Bool("stats", false, "Show statistics")
	viewCmd.Flags().Bool("unmatched", false, "List unmatched invoices and transactions")
}

func runView(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("view")

	page, _ := cmd.Flags().GetInt("page")
	perPage, _ := cmd.Flags().GetInt("per-page")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	showStats, _ := cmd.Flags().GetBool("stats")
	showUnmatched, _ := cmd.Flags().GetBool("unmatched")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if perPage <= 0 {
		perPage = cfg.ItemsPerPage
	}
	state, err := stateFromFlags(cmd, perPage)
	if err != nil {
		return err
	}
	state.SetPage(page)

	client, err := newAPIClient(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContext(cmd, log)
	defer cancel()

	details, err := client.FetchReconciliation(ctx, args[0])
	if err != nil {
		return handleAPIError(err, log)
	}

	projection := view.ProjectDetails(details, state)

	log.Debug().
		Int("groups", projection.TotalGroups).
		Int("rows", projection.Page.TotalItems).
		Msg("Reconciliation projected")

	if jsonOutput {
		data, err := json.MarshalIndent(struct {
			State      view.State      `json:"state"`
			Projection view.Projection `json:"projection"`
		}{state, projection}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printSummary(details, cfg.Location())
	printFilters(projection)
	printPage(projection.Page)

	if showStats {
		printStatistics(view.ComputeStatistics(details))
	}
	if showUnmatched {
		lookup := view.NewLookup(details.Invoices, details.Transactions)
		printUnmatched(
			view.UnmatchedInvoices(details.Invoices, details.Matches, lookup),
			view.UnmatchedTransactions(details.Transactions, details.Matches),
		)
	}
	return nil
}

func printSummary(details *models.ReconciliationDetails, loc *time.Location) {
	fmt.Println(strings.Repeat("=", 100))
	fmt.Printf("%s  [%s]\n", details.DisplayTitle(loc), view.StatusLabel(details.Status))
	fmt.Println(strings.Repeat("=", 100))
	fmt.Printf("Factures: %d   Transactions: %d   Exactes: %d   Approx.: %d   Sans correspondance: %d   Taux: %.1f%%\n",
		details.TotalInvoices, details.TotalTransactions,
		details.ExactMatches, details.FuzzyMatches, details.NoMatches,
		details.ReconciliationRate)
	fmt.Println()
}

func printFilters(p view.Projection) {
	if len(p.AvailableFilters) == 0 {
		return
	}
	parts := make([]string, 0, len(p.AvailableFilters))
	for _, f := range p.AvailableFilters {
		parts = append(parts, fmt.Sprintf("%s (%d)", view.FilterLabel(f), p.FilterCounts[f]))
	}
	fmt.Printf("Types: %s\n", strings.Join(parts, ", "))
	if p.HasActiveFilters {
		fmt.Printf("Filtres actifs: %d ligne(s) sur %d facture(s)\n", p.Page.TotalItems, p.TotalGroups)
	}
	fmt.Println()
}

func printPage(page view.Page) {
	if page.TotalItems == 0 {
		fmt.Println("Aucune correspondance.")
		return
	}

	fmt.Printf("%-14s  %-24s  %10s  %-36s  %12s  %-14s  %5s\n",
		"Facture", "Client", "Montant", "Transaction", "Montant tx", "Type", "Conf.")
	fmt.Println(strings.Repeat("-", 130))
	for _, item := range page.Items {
		switch it := item.(type) {
		case *view.SingleItem:
			printMatchLine(it.Invoice, it.Resolved, view.MatchLabel(it.Match))
		case *view.MultipleItem:
			printMatchLine(it.Invoice, view.Resolved{}, fmt.Sprintf("Multiple (%d)", len(it.Matches)))
			for _, r := range it.Matches {
				printMatchLine(nil, r, "  "+view.MatchLabel(r.Match))
			}
		}
	}
	fmt.Println(strings.Repeat("-", 130))
	fmt.Printf("Lignes %d-%d sur %d, page %d/%d\n",
		page.StartIndex+1, page.EndIndex, page.TotalItems, page.CurrentPage, max(page.TotalPages, 1))
}

func printMatchLine(inv *models.Invoice, r view.Resolved, label string) {
	ref, client, amount := "", "", ""
	if inv != nil {
		ref, client, amount = inv.Ref, inv.Tiers, fmt.Sprintf("%.2f", inv.MontantTTC)
	}

	txLabel, txAmount, confidence := "", "", ""
	if r.Match.ID != "" {
		txLabel = "Aucune transaction"
		if tx := r.Displayed(); tx != nil {
			txLabel, txAmount = tx.Libelles, fmt.Sprintf("%.2f", tx.Montant)
		}
		confidence = fmt.Sprintf("%.0f", r.Confidence())
	}

	fmt.Printf("%-14s  %-24s  %10s  %-36s  %12s  %-14s  %5s\n",
		truncate(ref, 14), truncate(client, 24), amount,
		truncate(txLabel, 36), txAmount, truncate(label, 14), confidence)
}

func printStatistics(s view.Statistics) {
	fmt.Println()
	fmt.Println("STATISTIQUES")
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Correspondances:        %d\n", s.TotalMatches)
	fmt.Printf("Factures multiples:     %d\n", s.MultipleGroups)
	fmt.Printf("Validées:               %d\n", s.Validated)
	fmt.Printf("Rejetées:               %d\n", s.Rejected)
	fmt.Printf("Manuelles:              %d\n", s.Manual)
	for _, t := range models.MatchTypes {
		if n := s.ByType[t]; n > 0 {
			fmt.Printf("  %-21s %d\n", view.MatchTypeLabel(t)+":", n)
		}
	}
	fmt.Printf("Factures sans match:    %d\n", s.UnmatchedInvoices)
	fmt.Printf("Transactions sans match: %d\n", s.UnmatchedTransactions)
	fmt.Printf("Montant rapproché:      %s €\n", s.MatchedAmount.StringFixed(2))
	fmt.Printf("Montant non rapproché:  %s €\n", s.UnmatchedAmount.StringFixed(2))
}

func printUnmatched(invoices []models.Invoice, transactions []models.BankTransaction) {
	fmt.Println()
	fmt.Printf("FACTURES SANS CORRESPONDANCE (%d)\n", len(invoices))
	for _, inv := range invoices {
		fmt.Printf("  %-14s  %-30s  %10.2f  %s\n", inv.Ref, truncate(inv.Tiers, 30), inv.MontantTTC, inv.DateFacturation)
	}
	fmt.Println()
	fmt.Printf("TRANSACTIONS SANS CORRESPONDANCE (%d)\n", len(transactions))
	for _, tx := range transactions {
		fmt.Printf("  %-12s  %-40s  %10.2f  %s\n", tx.DateComptable, truncate(tx.Libelles, 40), tx.Montant, tx.Devise)
	}
}
