package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nextcommerce/storedash/pkg/auth"
	"github.com/nextcommerce/storedash/pkg/httputil"
	"github.com/nextcommerce/storedash/pkg/orders"
	"github.com/nextcommerce/storedash/pkg/quota"
	"github.com/nextcommerce/storedash/pkg/storeapi"
)

// StoreHandlers serves the store dashboard and quota
type StoreHandlers struct {
	source DashboardSource
	quota  *quota.Middleware
}

// NewStoreHandlers creates a new store handlers instance
func NewStoreHandlers(source DashboardSource, quota *quota.Middleware) *StoreHandlers {
	return &StoreHandlers{source: source, quota: quota}
}

// RegisterRoutes registers store routes
func (h *StoreHandlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/stores/{id}/overview", h.getOverview).Methods("GET")
	r.HandleFunc("/quota", h.getQuota).Methods("GET")
}

// Overview is the store dashboard payload
type Overview struct {
	Store   storeapi.Store     `json:"store"`
	Stats   orders.Stats       `json:"stats"`
	Summary orders.Aggregation `json:"summary"`
	Empty   bool               `json:"empty"`
	Quota   *quota.State       `json:"quota,omitempty"`
}

// getOverview handles GET /api/v1/stores/{id}/overview
func (h *StoreHandlers) getOverview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	d, err := h.source.Dashboard(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary := orders.Aggregate(d.Orders, summaryClassifier)
	overview := Overview{
		Store:   d.Store,
		Stats:   orders.Summarize(d.Orders, d.ProductCount),
		Summary: summary,
		Empty:   summary.Empty(),
	}
	if state, ok := quota.FromContext(r.Context()); ok {
		overview.Quota = &state
	}
	httputil.WriteSuccess(w, overview)
}

// getQuota handles GET /api/v1/quota
func (h *StoreHandlers) getQuota(w http.ResponseWriter, r *http.Request) {
	if state, ok := quota.FromContext(r.Context()); ok {
		httputil.WriteSuccess(w, state)
		return
	}
	if h.quota == nil {
		httputil.WriteErrorMessage(w, http.StatusServiceUnavailable, "quota is not available")
		return
	}

	// The middleware could not evaluate quota; try once more so the error surfaces
	state, err := h.quota.Lookup(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, state)
}
