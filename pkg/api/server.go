package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nextcommerce/storedash/pkg/auth"
	"github.com/nextcommerce/storedash/pkg/middleware"
	"github.com/nextcommerce/storedash/pkg/orders"
	"github.com/nextcommerce/storedash/pkg/plans"
	"github.com/nextcommerce/storedash/pkg/quota"
	"github.com/nextcommerce/storedash/pkg/storeapi"
	"github.com/nextcommerce/storedash/pkg/subscriptions"
	"github.com/nextcommerce/storedash/pkg/upgrade"
)

// DashboardSource fetches what the store overview is computed from
type DashboardSource interface {
	Dashboard(ctx context.Context, storeID string) (*storeapi.Dashboard, error)
}

// Config wires the server's collaborators
type Config struct {
	Catalog   *plans.Catalog
	Workflow  *upgrade.Workflow
	Dashboard DashboardSource
	Requests  subscriptions.Lister

	Auth  *auth.Middleware
	Quota *quota.Middleware
	// WriteLimit guards checkout writes; nil disables rate limiting
	WriteLimit *middleware.RateLimitMiddleware

	MaxProofBytes int64
}

// Server represents our API server
type Server struct {
	router *mux.Router
	cfg    Config
}

// NewServer creates a new API server
func NewServer(cfg Config) *Server {
	if cfg.Catalog == nil {
		cfg.Catalog = plans.DefaultCatalog()
	}
	s := &Server{
		router: mux.NewRouter(),
		cfg:    cfg,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	// Public catalog
	NewPlanHandlers(s.cfg.Catalog).RegisterRoutes(s.router)

	// Everything else needs a merchant
	protected := s.router.PathPrefix("/api/v1").Subrouter()
	if s.cfg.Auth != nil {
		protected.Use(s.cfg.Auth.Handler)
	}
	if s.cfg.Quota != nil {
		protected.Use(s.cfg.Quota.Handler)
	}

	NewStoreHandlers(s.cfg.Dashboard, s.cfg.Quota).RegisterRoutes(protected)
	NewUpgradeHandlers(s.cfg.Workflow, s.cfg.WriteLimit, s.cfg.MaxProofBytes).RegisterRoutes(protected)
	NewSubscriptionHandlers(s.cfg.Requests).RegisterRoutes(protected)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the router so callers can mount extra routes
func (s *Server) Router() *mux.Router {
	return s.router
}

// RouteRegistrar is an interface for types that can register routes
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// RegisterRoutes registers routes from a RouteRegistrar
func (s *Server) RegisterRoutes(registrar RouteRegistrar) {
	registrar.RegisterRoutes(s.router)
}

// summaryClassifier is shared; classifiers are immutable after construction
var summaryClassifier = orders.SummaryClassifier()
