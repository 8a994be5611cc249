// Package server exposes the reconciliation view engine to a browser UI over
// HTTP. It holds no reconciliation data itself: every request reads a fresh
// snapshot from the remote API.
package server

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/forestar-be/forestar-facturation/internal/checkpoint"
	"github.com/forestar-be/forestar-facturation/internal/logger"
	"github.com/forestar-be/forestar-facturation/internal/resolver"
	"github.com/forestar-be/forestar-facturation/internal/view"
	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// Backend is the remote reconciliation API. *api.Client implements it.
type Backend interface {
	resolver.MatchStore
	resolver.Loader

	ListReconciliations(ctx context.Context) ([]models.ReconciliationSummary, error)
	GetStatus(ctx context.Context, reconciliationID string) (*models.StatusReport, error)
	DeleteReconciliation(ctx context.Context, reconciliationID string) error
	UpdateTitle(ctx context.Context, reconciliationID string, req models.UpdateTitleRequest) error
	ValidateMatch(ctx context.Context, reconciliationID, matchID string, notes []string) (*models.Match, error)
	RejectMatch(ctx context.Context, reconciliationID, matchID string, notes []string) (*models.Match, error)
	FetchSuggestions(ctx context.Context, reconciliationID, invoiceID string) ([]models.MatchSuggestion, error)
}

// Options configure the HTTP server.
type Options struct {
	Backend      Backend
	Tracker      *checkpoint.Tracker // optional
	ItemsPerPage int
	Location     *time.Location
	CORSOrigins  []string
}

// Handler serves the API routes.
type Handler struct {
	backend      Backend
	resolver     *resolver.Resolver
	tracker      *checkpoint.Tracker
	itemsPerPage int
	location     *time.Location
	log          zerolog.Logger
}

// NewHandler creates a handler over opts.Backend.
func NewHandler(opts Options) *Handler {
	perPage := opts.ItemsPerPage
	if perPage <= 0 {
		perPage = view.DefaultItemsPerPage
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		backend:      opts.Backend,
		resolver:     resolver.New(opts.Backend, opts.Backend),
		tracker:      opts.Tracker,
		itemsPerPage: perPage,
		location:     loc,
		log:          logger.WithComponent("server"),
	}
}

// New builds the gin engine with middleware and routes.
func New(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger())

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterRoutes(r, NewHandler(opts))
	return r
}
