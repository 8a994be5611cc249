package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forestar-be/forestar-facturation/internal/logger"
)

var statusCmd = &cobra.Command{
	Use:   "status [reconciliation-id]",
	Short: "Show or follow the status of a reconciliation job",
	Long: `Show the status of a reconciliation job.

With --wait, poll the job until it completes or fails. The job is recorded in
the checkpoint while it runs, so an interrupted wait can be resumed later by
running status without an id.`,
	Example: `  # Show the current status once
  recondesk status 3f2a...

  # Follow the job until it completes
  recondesk status 3f2a... --wait

  # Resume the job recorded in the checkpoint
  recondesk status --wait`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolP("wait", "w", false, "Poll until the job completes")
	statusCmd.Flags().Bool("quiet", false, "Do not print progress while waiting")
}

func runStatus(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("status")

	wait, _ := cmd.Flags().GetBool("wait")
	quiet, _ := cmd.Flags().GetBool("quiet")

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

	id := ""
	if len(args) == 1 {
		id = args[0]
	} else {
		state, err := tracker.Active(ctx)
		if err != nil {
			return fmt.Errorf("failed to read checkpoint: %w", err)
		}
		if state == nil {
			fmt.Println("Aucune réconciliation en cours.")
			return nil
		}
		id = state.ReconciliationID
		fmt.Printf("Réconciliation en cours: %s (%s)\n", id, state.Message)
	}

	if !wait {
		report, err := client.GetStatus(ctx, id)
		if err != nil {
			return handleAPIError(err, log)
		}
		fmt.Println(report.StatusMessage())
		return nil
	}

	log.Info().Str("reconciliation_id", id).Msg("Waiting for reconciliation")

	details, err := newPoller(client, tracker, cfg, quiet).Wait(ctx, id)
	if err != nil {
		return handleAPIError(err, log)
	}

	printSummary(details, cfg.Location())
	return nil
}
