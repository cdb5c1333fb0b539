package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/nextcommerce/storedash/pkg/contextkeys"
)

var (
	// ErrUnauthenticated is returned when a request carries no usable identity
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidToken is returned when a bearer token fails verification
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Merchant is the authenticated store owner making the request
type Merchant struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`

	// Token is the raw bearer credential, forwarded to the store API
	Token string `json:"-"`
}

// DisplayName returns the best human-readable name for the merchant
func (m *Merchant) DisplayName() string {
	switch {
	case m.Name != "":
		return m.Name
	case m.Email != "":
		return m.Email
	default:
		return m.ID
	}
}

// Authenticator resolves the merchant behind an HTTP request
type Authenticator interface {
	Authenticate(r *http.Request) (*Merchant, error)
}

// WithMerchant stores the merchant in the context
func WithMerchant(ctx context.Context, m *Merchant) context.Context {
	ctx = contextkeys.WithMerchant(ctx, m)
	return contextkeys.WithUserID(ctx, m.ID)
}

// FromContext returns the authenticated merchant, or nil
func FromContext(ctx context.Context) *Merchant {
	m, _ := ctx.Value(contextkeys.MerchantKey).(*Merchant)
	return m
}
