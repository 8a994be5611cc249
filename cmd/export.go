package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/forestar-be/forestar-facturation/internal/export"
	"github.com/forestar-be/forestar-facturation/internal/logger"
	"github.com/forestar-be/forestar-facturation/internal/sheets"
	"github.com/forestar-be/forestar-facturation/internal/view"
)

var exportCmd = &cobra.Command{
	Use:   "export [reconciliation-id]",
	Short: "Export the filtered and sorted matches to Excel or Google Sheets",
	Long: `Export every row of the current view, all pages, in the selected order.

The workbook has a "Correspondances" sheet with one row per invoice and an
"Informations Export" sheet describing the search, filters and sort used.
Invoices with several candidates are exported as one row whose values are
joined with " | OU | ".

The file is named after the reconciliation date and never overwrites an
existing file. With --sheets, the rows are appended to the Google Sheet set in
GOOGLE_SHEET_URL instead.`,
	Example: `  # Export everything to the export directory
  recondesk export 3f2a...

  # Export only multiple matches to a given directory
  recondesk export 3f2a... --filter MULTIPLE --output-dir ./exports

  # Append to the configured Google Sheet
  recondesk export 3f2a... --sheets`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	addViewFlags(exportCmd)
	exportCmd.Flags().StringP("output-dir", "o", "", "Directory for the xlsx file (default: EXPORT_DIR)")
	exportCmd.Flags().Bool("sheets", false, "Append to the Google Sheet in GOOGLE_SHEET_URL instead of writing a file")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")

	outputDir, _ := cmd.Flags().GetString("output-dir")
	toSheets, _ := cmd.Flags().GetBool("sheets")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if outputDir == "" {
		outputDir = cfg.ExportDir
	}
	state, err := stateFromFlags(cmd, cfg.ItemsPerPage)
	if err != nil {
		return err
	}
	if toSheets && cfg.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL is required with --sheets")
	}

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
	loc := cfg.Location()
	meta := export.Meta{
		ReconciliationID:   details.ID,
		ReconciliationName: details.DisplayTitle(loc),
		ReferenceDate:      details.ReferenceDate(),
		SearchTerm:         state.SearchTerm,
		Filters:            state.Filters,
		Sort:               state.Sort,
		ExportedAt:         time.Now(),
		Location:           loc,
	}

	log.Info().
		Str("reconciliation_id", details.ID).
		Int("rows", len(projection.Items)).
		Bool("filtered", meta.HasActiveFilters()).
		Msg("Exporting reconciliation")

	if toSheets {
		service, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL, sheets.Credentials{
			File: cfg.GoogleCredentialsFile,
			JSON: cfg.GoogleCredentialsJSON,
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to create Google Sheets service")
			return fmt.Errorf("failed to connect to Google Sheets: %w", err)
		}
		if err := service.WriteSnapshot(ctx, export.BuildRows(projection.Items), meta); err != nil {
			log.Error().Err(err).Msg("Failed to write to Google Sheets")
			return fmt.Errorf("failed to write to Google Sheets: %w", err)
		}
		fmt.Printf("%d ligne(s) ajoutée(s) à la feuille Google.\n", len(projection.Items))
		return nil
	}

	path, err := export.Save(outputDir, projection.Items, meta)
	if err != nil {
		log.Error().Err(err).Str("dir", outputDir).Msg("Failed to write export")
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Printf("Export enregistré: %s (%d ligne(s))\n", path, len(projection.Items))
	return nil
}
