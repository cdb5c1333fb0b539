package quota

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nextcommerce/storedash/pkg/auth"
	"github.com/nextcommerce/storedash/pkg/contextkeys"
	"github.com/nextcommerce/storedash/pkg/observability"
)

// Response headers carrying the evaluated quota
const (
	HeaderUsed    = "X-Quota-Used"
	HeaderLimit   = "X-Quota-Limit"
	HeaderReached = "X-Quota-Reached"
)

// Usage is the raw account data a State is evaluated from
type Usage struct {
	Used   int
	Limit  int
	IsPaid bool
}

// UsageSource looks up a merchant's current order usage
type UsageSource interface {
	Usage(ctx context.Context, merchant *auth.Merchant) (Usage, error)
}

// Middleware evaluates the merchant's quota on every request and exposes it
// through response headers and the request context. It never rejects a request.
//
// REQUIRES: auth.Middleware must run before this middleware.
type Middleware struct {
	source  UsageSource
	metrics *observability.Metrics
}

// NewMiddleware creates a quota middleware. metrics may be nil.
func NewMiddleware(source UsageSource, metrics *observability.Metrics) *Middleware {
	return &Middleware{source: source, metrics: metrics}
}

// Handler wraps an HTTP handler with quota evaluation
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		merchant := auth.FromContext(r.Context())
		if merchant == nil {
			next.ServeHTTP(w, r)
			return
		}

		state, err := m.Lookup(r.Context(), merchant)
		if err != nil {
			// Usage is advisory; serve the request without it
			observability.FromContext(r.Context()).WithError(err).Warn("quota lookup failed")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set(HeaderUsed, strconv.Itoa(state.Used))
		w.Header().Set(HeaderLimit, strconv.Itoa(state.Limit))
		w.Header().Set(HeaderReached, strconv.FormatBool(state.LimitReached))

		ctx := contextkeys.WithQuota(r.Context(), state)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Lookup fetches usage for merchant and evaluates it
func (m *Middleware) Lookup(ctx context.Context, merchant *auth.Merchant) (State, error) {
	usage, err := m.source.Usage(ctx, merchant)
	if err != nil {
		return State{}, err
	}

	state := Evaluate(usage.Used, usage.Limit, usage.IsPaid)
	if m.metrics != nil {
		m.metrics.QuotaEvaluationsTotal.WithLabelValues(state.Outcome()).Inc()
	}
	return state, nil
}

// FromContext returns the state evaluated by Middleware for this request
func FromContext(ctx context.Context) (State, bool) {
	state, ok := ctx.Value(contextkeys.QuotaKey).(State)
	return state, ok
}
