package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/forestar-be/forestar-facturation/internal/logger"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [invoices-file] [transactions-file]",
	Short: "Start a reconciliation from an invoices export and a bank statement",
	Long: `Upload the invoices export and the bank transactions export to the
reconciliation API, which matches them in the background.

The files are sent as-is; their content is checked by the API. The new job is
recorded in the checkpoint. Use --wait to follow it until it completes, or
"recondesk status --wait" later.`,
	Example: `  # Upload and return immediately
  recondesk upload factures.csv mouvements.csv

  # Upload and wait for the result
  recondesk upload factures.csv mouvements.csv --wait`,
	Args: cobra.ExactArgs(2),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().BoolP("wait", "w", false, "Poll until the reconciliation completes")
	uploadCmd.Flags().Bool("quiet", false, "Do not print progress while waiting")
}

func runUpload(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("upload")

	wait, _ := cmd.Flags().GetBool("wait")
	quiet, _ := cmd.Flags().GetBool("quiet")
	invoicesPath, transactionsPath := args[0], args[1]

	for _, path := range args {
		if err := validateUploadFile(path, log); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg, log)
	if err != nil {
		return err
	}
	tracker, err := newTracker(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContext(cmd, log)
	defer cancel()

	if active, err := tracker.Active(ctx); err == nil && active != nil {
		log.Warn().
			Str("reconciliation_id", active.ReconciliationID).
			Msg("Another reconciliation is still recorded as running, it will no longer be followed")
	}

	result, err := client.UploadFiles(ctx, invoicesPath, transactionsPath)
	if err != nil {
		return handleAPIError(err, log)
	}
	if _, err := tracker.Start(ctx, result.ReconciliationID); err != nil {
		log.Warn().Err(err).Msg("Failed to save checkpoint")
	}

	fmt.Printf("Réconciliation démarrée: %s\n", result.ReconciliationID)
	if !wait {
		return nil
	}

	details, err := newPoller(client, tracker, cfg, quiet).Wait(ctx, result.ReconciliationID)
	if err != nil {
		return handleAPIError(err, log)
	}
	printSummary(details, cfg.Location())
	return nil
}

// validateUploadFile checks that path is a non-empty regular file
func validateUploadFile(path string, log zerolog.Logger) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("file", path).Msg("File not found")
			return fmt.Errorf("file not found: %s", path)
		}
		return fmt.Errorf("error accessing file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("path is not a regular file: %s", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}
	return nil
}
