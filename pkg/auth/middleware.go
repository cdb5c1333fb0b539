package auth

import (
	"errors"
	"net/http"

	"github.com/nextcommerce/storedash/pkg/httputil"
	"github.com/nextcommerce/storedash/pkg/observability"
)

// Middleware authenticates requests and stores the merchant in the context
type Middleware struct {
	authenticator Authenticator
	optional      bool // If true, allow requests without auth
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(authenticator Authenticator, optional bool) *Middleware {
	return &Middleware{
		authenticator: authenticator,
		optional:      optional,
	}
}

// Handler wraps an HTTP handler with authentication
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		merchant, err := m.authenticator.Authenticate(r)
		if err != nil {
			if m.optional && errors.Is(err, ErrUnauthenticated) {
				next.ServeHTTP(w, r)
				return
			}
			observability.FromContext(r.Context()).WithError(err).Debug("authentication failed")
			httputil.WriteUnauthorized(w, publicMessage(err))
			return
		}

		ctx := WithMerchant(r.Context(), merchant)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func publicMessage(err error) string {
	if errors.Is(err, ErrInvalidToken) {
		return ErrInvalidToken.Error()
	}
	return err.Error()
}
