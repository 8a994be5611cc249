package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/forestar-be/forestar-facturation/internal/api"
	"github.com/forestar-be/forestar-facturation/internal/logger"
	"github.com/forestar-be/forestar-facturation/internal/view"
	"github.com/forestar-be/forestar-facturation/pkg/models"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Create, update, validate or reject individual matches",
	Long: `Edit the matches of a reconciliation one at a time.

Every change is sent to the reconciliation API; run view again to see the
refreshed result.`,
}

var matchCreateCmd = &cobra.Command{
	Use:     "create [reconciliation-id] [invoice-id]",
	Short:   "Create a manual match for an invoice",
	Example: `  recondesk match create 3f2a... inv-42 --transaction tx-981 --note "Paiement groupé"`,
	Args:    cobra.ExactArgs(2),
	RunE:    runMatchCreate,
}

var matchUpdateCmd = &cobra.Command{
	Use:   "update [reconciliation-id] [match-id]",
	Short: "Change the transaction, type or notes of a match",
	Example: `  # Point the match at another transaction
  recondesk match update 3f2a... m-17 --transaction tx-981

  # Replace the notes
  recondesk match update 3f2a... m-17 --note "Vérifié avec le client"`,
	Args: cobra.ExactArgs(2),
	RunE: runMatchUpdate,
}

var matchDeleteCmd = &cobra.Command{
	Use:   "delete [reconciliation-id] [match-id]",
	Short: "Delete a match",
	Args:  cobra.ExactArgs(2),
	RunE:  runMatchDelete,
}

var matchValidateCmd = &cobra.Command{
	Use:   "validate [reconciliation-id] [match-id]",
	Short: "Validate a match",
	Args:  cobra.ExactArgs(2),
	RunE:  runMatchReview,
}

var matchRejectCmd = &cobra.Command{
	Use:   "reject [reconciliation-id] [match-id]",
	Short: "Reject a match",
	Args:  cobra.ExactArgs(2),
	RunE:  runMatchReview,
}

var matchSuggestCmd = &cobra.Command{
	Use:   "suggest [reconciliation-id] [invoice-id]",
	Short: "List candidate transactions for an invoice",
	Args:  cobra.ExactArgs(2),
	RunE:  runMatchSuggest,
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.AddCommand(matchCreateCmd, matchUpdateCmd, matchDeleteCmd, matchValidateCmd, matchRejectCmd, matchSuggestCmd)

	matchCreateCmd.Flags().StringP("transaction", "t", "", "Transaction to match (empty: no transaction)")
	matchCreateCmd.Flags().String("type", "", "Match type (default: decided by the API)")
	matchCreateCmd.Flags().StringArrayP("note", "n", nil, "Note to attach (repeatable)")

	matchUpdateCmd.Flags().StringP("transaction", "t", "", "New transaction")
	matchUpdateCmd.Flags().Bool("clear-transaction", false, "Detach the transaction")
	matchUpdateCmd.Flags().String("type", "", "New match type")
	matchUpdateCmd.Flags().Float64("confidence", 0, "New confidence, 0 to 100")
	matchUpdateCmd.Flags().Bool("manual", false, "Mark the match as manual")
	matchUpdateCmd.Flags().StringArrayP("note", "n", nil, "Replace the notes (repeatable)")
	matchUpdateCmd.MarkFlagsMutuallyExclusive("transaction", "clear-transaction")

	for _, c := range []*cobra.Command{matchValidateCmd, matchRejectCmd} {
		c.Flags().StringArrayP("note", "n", nil, "Note to attach (repeatable, default: a standard note)")
	}

	matchSuggestCmd.Flags().Bool("json", false, "Output as JSON")
}

// matchClient loads the configuration and creates the API client.
func matchClient(log zerolog.Logger) (*api.Client, error) {
	cfg, err := loadConfig(log)
	if err != nil {
		return nil, err
	}
	return newAPIClient(cfg, log)
}

func runMatchCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("match")

	transactionID, _ := cmd.Flags().GetString("transaction")
	matchType, _ := cmd.Flags().GetString("type")
	notes, _ := cmd.Flags().GetStringArray("note")

	client, err := matchClient(log)
	if err != nil {
		return err
	}
	ctx, cancel := createContext(cmd, log)
	defer cancel()

	match, err := client.CreateMatch(ctx, args[0], models.CreateMatchRequest{
		InvoiceID:     args[1],
		TransactionID: transactionID,
		MatchType:     models.MatchType(strings.ToUpper(matchType)),
		IsManualMatch: true,
		Notes:         notes,
	})
	if err != nil {
		return handleAPIError(err, log)
	}
	fmt.Printf("Correspondance créée: %s (%s)\n", match.ID, view.MatchLabel(*match))
	return nil
}

func runMatchUpdate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("match")

	var req models.UpdateMatchRequest
	flags := cmd.Flags()
	if flags.Changed("transaction") {
		id, _ := flags.GetString("transaction")
		req.TransactionID = &id
	}
	if detach, _ := flags.GetBool("clear-transaction"); detach {
		empty := ""
		req.TransactionID = &empty
	}
	if flags.Changed("type") {
		raw, _ := flags.GetString("type")
		t := models.MatchType(strings.ToUpper(raw))
		req.MatchType = &t
	}
	if flags.Changed("confidence") {
		c, _ := flags.GetFloat64("confidence")
		req.Confidence = &c
	}
	if flags.Changed("manual") {
		m, _ := flags.GetBool("manual")
		req.IsManualMatch = &m
	}
	if flags.Changed("note") {
		req.Notes, _ = flags.GetStringArray("note")
	}

	client, err := matchClient(log)
	if err != nil {
		return err
	}
	ctx, cancel := createContext(cmd, log)
	defer cancel()

	match, err := client.UpdateMatch(ctx, args[0], args[1], req)
	if err != nil {
		return handleAPIError(err, log)
	}
	fmt.Printf("Correspondance mise à jour: %s (%s)\n", match.ID, view.MatchLabel(*match))
	return nil
}

func runMatchDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("match")

	client, err := matchClient(log)
	if err != nil {
		return err
	}
	ctx, cancel := createContext(cmd, log)
	defer cancel()

	if err := client.DeleteMatch(ctx, args[0], args[1]); err != nil {
		return handleAPIError(err, log)
	}
	fmt.Printf("Correspondance supprimée: %s\n", args[1])
	return nil
}

// runMatchReview serves both validate and reject.
func runMatchReview(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("match")

	notes, _ := cmd.Flags().GetStringArray("note")

	client, err := matchClient(log)
	if err != nil {
		return err
	}
	ctx, cancel := createContext(cmd, log)
	defer cancel()

	review, verb := client.ValidateMatch, "validée"
	if cmd.Name() == "reject" {
		review, verb = client.RejectMatch, "rejetée"
	}
	match, err := review(ctx, args[0], args[1], notes)
	if err != nil {
		return handleAPIError(err, log)
	}
	fmt.Printf("Correspondance %s: %s\n", verb, match.ID)
	return nil
}

func runMatchSuggest(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("match")

	jsonOutput, _ := cmd.Flags().GetBool("json")

	client, err := matchClient(log)
	if err != nil {
		return err
	}
	ctx, cancel := createContext(cmd, log)
	defer cancel()

	suggestions, err := client.FetchSuggestions(ctx, args[0], args[1])
	if err != nil {
		return handleAPIError(err, log)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(suggestions, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(suggestions) == 0 {
		fmt.Println("Aucune suggestion.")
		return nil
	}
	for _, s := range suggestions {
		fmt.Printf("  %-36s  %-14s  %3.0f%%  %-40s  %10.2f €\n",
			s.Transaction.ID, view.MatchTypeLabel(s.MatchType), s.Confidence,
			truncate(s.Transaction.Libelles, 40), s.Transaction.Montant)
		if len(s.Reasons) > 0 {
			fmt.Printf("      %s\n", strings.Join(s.Reasons, "; "))
		}
	}
	return nil
}
