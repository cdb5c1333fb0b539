package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nextcommerce/storedash/pkg/httputil"
	"github.com/nextcommerce/storedash/pkg/subscriptions"
)

// SubscriptionHandlers list the merchant's subscription requests
type SubscriptionHandlers struct {
	lister subscriptions.Lister
}

// NewSubscriptionHandlers creates a new subscription handlers instance
func NewSubscriptionHandlers(lister subscriptions.Lister) *SubscriptionHandlers {
	return &SubscriptionHandlers{lister: lister}
}

// RegisterRoutes registers subscription routes
func (h *SubscriptionHandlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/subscriptions", h.listSubscriptions).Methods("GET")
}

// listSubscriptions handles GET /api/v1/subscriptions
// Query params:
//   - limit: Number of results (1-100) - default: 20
func (h *SubscriptionHandlers) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	merchant, ok := merchantOrError(w, r)
	if !ok {
		return
	}

	limit, err := httputil.ParseQueryInt(r, "limit", 20)
	if err != nil || limit < 1 || limit > 100 {
		httputil.WriteBadRequest(w, "limit must be between 1 and 100")
		return
	}

	requests, err := h.lister.ListByUser(r.Context(), merchant.ID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if requests == nil {
		requests = []subscriptions.Request{}
	}
	httputil.WriteSuccess(w, requests)
}
