package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nextcommerce/storedash/pkg/httputil"
	"github.com/nextcommerce/storedash/pkg/plans"
)

// PlanHandlers serves the upgrade plan catalog
type PlanHandlers struct {
	catalog *plans.Catalog
}

// NewPlanHandlers creates a new plan handlers instance
func NewPlanHandlers(catalog *plans.Catalog) *PlanHandlers {
	return &PlanHandlers{catalog: catalog}
}

// RegisterRoutes registers plan routes
func (h *PlanHandlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/plans", h.listPlans).Methods("GET")
	r.HandleFunc("/api/v1/plans/{id}", h.getPlan).Methods("GET")
}

// listPlans handles GET /api/v1/plans
func (h *PlanHandlers) listPlans(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, h.catalog.List())
}

// getPlan handles GET /api/v1/plans/{id}
func (h *PlanHandlers) getPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	plan, err := h.catalog.Get(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, plan)
}
