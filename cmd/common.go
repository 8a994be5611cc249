package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/forestar-be/forestar-facturation/internal/api"
	"github.com/forestar-be/forestar-facturation/internal/checkpoint"
	"github.com/forestar-be/forestar-facturation/internal/config"
	"github.com/forestar-be/forestar-facturation/internal/poller"
	"github.com/forestar-be/forestar-facturation/internal/resolver"
	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// loadConfig loads the configuration, reporting what to fix on failure.
func loadConfig(log zerolog.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return nil, fmt.Errorf("invalid configuration, please check your .env file: %w", err)
	}
	return cfg, nil
}

// newAPIClient creates the reconciliation API client from the configuration.
func newAPIClient(cfg *config.Config, log zerolog.Logger) (*api.Client, error) {
	client, err := api.NewClient(api.Options{
		BaseURL: cfg.APIURL,
		Token:   cfg.APIToken,
		Timeout: cfg.APITimeout(),
	})
	if err != nil {
		log.Error().Err(err).Str("api_url", cfg.APIURL).Msg("Failed to create API client")
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	if cfg.APIToken == "" {
		log.Warn().Msg("API_TOKEN is not set, requests will be unauthenticated")
	}
	return client, nil
}

// newTracker opens the configured checkpoint store.
func newTracker(cfg *config.Config, log zerolog.Logger) (*checkpoint.Tracker, error) {
	switch cfg.CheckpointBackend {
	case config.CheckpointPostgres:
		db, err := checkpoint.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open checkpoint database")
			return nil, fmt.Errorf("failed to open checkpoint database: %w", err)
		}
		log.Debug().Str("key", cfg.CheckpointKey).Msg("Using postgres checkpoint store")
		return checkpoint.NewTracker(checkpoint.NewGormStore(db, cfg.CheckpointKey)), nil
	default:
		log.Debug().Str("file", cfg.CheckpointFile).Msg("Using file checkpoint store")
		return checkpoint.NewTracker(checkpoint.NewFileStore(cfg.CheckpointFile)), nil
	}
}

// newPoller builds a poller that prints every status change.
func newPoller(client *api.Client, tracker *checkpoint.Tracker, cfg *config.Config, quiet bool) *poller.Poller {
	p := poller.New(client, tracker, cfg.PollInterval())
	if !quiet {
		var last string
		p.OnUpdate = func(r models.StatusReport) {
			if msg := r.StatusMessage(); msg != last {
				fmt.Println(msg)
				last = msg
			}
		}
	}
	return p
}

// createContext creates a context cancelled on interrupt, with the
// --timeout flag applied when set.
func createContext(cmd *cobra.Command, log zerolog.Logger) (context.Context, context.CancelFunc) {
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	var ctx context.Context
	var cancel context.CancelFunc
	if timeoutSecs > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// handleAPIError provides user-friendly error messages for API failures
func handleAPIError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Command failed")

	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("operation timed out. Try increasing --timeout or API_TIMEOUT_SECONDS")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("operation was canceled")
	case errors.Is(err, api.ErrUnauthorized):
		return fmt.Errorf("the reconciliation API rejected the token. Please check API_TOKEN")
	case errors.Is(err, api.ErrNotFound), errors.Is(err, poller.ErrNotFound):
		return fmt.Errorf("Réconciliation non trouvée: %w", err)
	case errors.Is(err, api.ErrTransport):
		return fmt.Errorf("cannot reach the reconciliation API. Please check API_URL and your network: %w", err)
	case resolver.IsPartial(err):
		return fmt.Errorf("the resolution stopped halfway and may be partially applied. Reload the reconciliation before retrying: %w", err)
	case errors.Is(err, resolver.ErrReloadFailed):
		return fmt.Errorf("changes were applied but the reconciliation could not be reloaded: %w", err)
	default:
		return err
	}
}
