package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/forestar-be/forestar-facturation/internal/logger"
	"github.com/forestar-be/forestar-facturation/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reconciliation view API to the web dashboard",
	Long: `Start the HTTP API used by the web dashboard. It proxies the
reconciliation API and adds the projected view (search, filters, sort,
pagination), statistics, Excel export and multiple-match resolution.

Routes are served under /api; GET /api/health reports liveness.`,
	Example: `  # Listen on SERVER_ADDR (default :8080)
  recondesk serve

  # Listen on another address in release mode
  recondesk serve --addr :9000 --release`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: SERVER_ADDR)")
	serveCmd.Flags().Bool("release", false, "Run gin in release mode")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	addr, _ := cmd.Flags().GetString("addr")
	release, _ := cmd.Flags().GetBool("release")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.ServerAddr
	}
	client, err := newAPIClient(cfg, log)
	if err != nil {
		return err
	}
	tracker, err := newTracker(cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Checkpoint unavailable, /api/active will report no job")
		tracker = nil
	}

	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := server.New(server.Options{
		Backend:      client,
		Tracker:      tracker,
		ItemsPerPage: cfg.ItemsPerPage,
		Location:     cfg.Location(),
		CORSOrigins:  cfg.CORSOrigins,
	})
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := createContext(cmd, log)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
