package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// HeaderAuthenticator trusts an identity header set by an upstream gateway.
// Only deploy it behind a proxy that strips the header from client requests.
type HeaderAuthenticator struct {
	header string
}

// NewHeaderAuthenticator reads the merchant ID from header
func NewHeaderAuthenticator(header string) *HeaderAuthenticator {
	return &HeaderAuthenticator{header: header}
}

// Authenticate implements Authenticator
func (a *HeaderAuthenticator) Authenticate(r *http.Request) (*Merchant, error) {
	id := strings.TrimSpace(r.Header.Get(a.header))
	if id == "" {
		return nil, fmt.Errorf("%w: missing %s header", ErrUnauthenticated, a.header)
	}

	m := &Merchant{
		ID:    id,
		Name:  strings.TrimSpace(r.Header.Get("X-Merchant-Name")),
		Email: strings.TrimSpace(r.Header.Get("X-Merchant-Email")),
	}
	// Pass through any credential so store API calls act as the merchant
	if token, err := BearerToken(r); err == nil {
		m.Token = token
	}
	return m, nil
}
