package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forestar-be/forestar-facturation/internal/logger"
	"github.com/forestar-be/forestar-facturation/internal/resolver"
	"github.com/forestar-be/forestar-facturation/internal/view"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [reconciliation-id] [invoice-id]",
	Short: "Resolve an invoice that has several competing matches",
	Long: `Resolve an invoice matched to several candidate transactions.

Choose exactly one of:
  --keep <match-id>         keep this match, delete the others, mark it manual
  --create <transaction-id> delete every candidate and match another transaction
  --reject-all              remove every candidate, leaving the invoice unmatched

Without a choice, the candidates are listed. Changes are applied one at a
time; once started they are not interrupted. If a step fails after earlier
steps succeeded the resolution may be partially applied, and the command says
so.`,
	Example: `  # List the candidates
  recondesk resolve 3f2a... inv-42

  # Keep one candidate
  recondesk resolve 3f2a... inv-42 --keep m-17

  # Match another transaction
  recondesk resolve 3f2a... inv-42 --create tx-981`,
	Args: cobra.ExactArgs(2),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().String("keep", "", "Match to keep")
	resolveCmd.Flags().String("create", "", "Transaction to match instead of the candidates")
	resolveCmd.Flags().Bool("reject-all", false, "Reject every candidate")
	resolveCmd.MarkFlagsMutuallyExclusive("keep", "create", "reject-all")
}

func runResolve(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("resolve")

	keep, _ := cmd.Flags().GetString("keep")
	create, _ := cmd.Flags().GetString("create")
	rejectAll, _ := cmd.Flags().GetBool("reject-all")
	recID, invoiceID := args[0], args[1]

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

	details, err := client.FetchReconciliation(ctx, recID)
	if err != nil {
		return handleAPIError(err, log)
	}
	lookup := view.NewLookup(details.Invoices, details.Transactions)
	group, ok := view.FindGroup(view.GroupMatches(details.Matches, lookup), invoiceID)
	if !ok || !group.IsOriginallyMultiple {
		return fmt.Errorf("invoice %s has no competing matches", invoiceID)
	}

	session, err := resolver.NewSession(recID, invoiceID, group.Matches)
	if err != nil {
		return err
	}

	switch {
	case keep != "":
		err = session.SelectMatch(keep)
	case create != "":
		if err = session.Toggle(); err == nil {
			err = session.SelectTransaction(create)
		}
	case rejectAll:
		err = session.RejectAll()
	default:
		printCandidates(group, lookup)
		return nil
	}
	if err != nil {
		return err
	}

	err = session.Resolve(ctx, resolver.New(client, client))
	switch {
	case err == nil:
	case errors.Is(err, resolver.ErrReloadFailed):
		log.Warn().Err(err).Msg("Resolution applied without reload")
	default:
		return handleAPIError(err, log)
	}

	result := session.Result()
	fmt.Printf("Résolution %s appliquée: %d correspondance(s) supprimée(s)\n", result.ResolutionID, len(result.Deleted))
	if result.Survivor != nil {
		fmt.Printf("Correspondance conservée: %s (%s)\n", result.Survivor.ID, view.MatchLabel(*result.Survivor))
	}
	return nil
}

func printCandidates(group view.Group, lookup *view.Lookup) {
	ref := group.InvoiceID
	if group.Invoice != nil {
		ref = fmt.Sprintf("%s - %s (%.2f €)", group.Invoice.Ref, group.Invoice.Tiers, group.Invoice.MontantTTC)
	}
	fmt.Printf("Facture %s: %d correspondances\n\n", ref, len(group.Matches))
	for _, m := range group.Matches {
		r := view.Resolved{Match: m, Transaction: lookup.TransactionOf(m)}
		label, amount := "Aucune transaction", ""
		if tx := r.Displayed(); tx != nil {
			label, amount = tx.Libelles, fmt.Sprintf("%.2f €", tx.Montant)
		}
		fmt.Printf("  %-36s  %-14s  %3.0f%%  %-40s  %s\n",
			m.ID, view.MatchLabel(m), r.Confidence(), truncate(label, 40), amount)
	}
	fmt.Println()
	fmt.Println("Use --keep <match-id>, --create <transaction-id> or --reject-all.")
}
