package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCAuthenticator verifies bearer tokens issued by the merchant identity provider
type OIDCAuthenticator struct {
	verifier *oidc.IDTokenVerifier
}

type merchantClaims struct {
	Subject           string `json:"sub"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
}

// NewOIDCAuthenticator discovers the issuer and builds a verifier for audience
func NewOIDCAuthenticator(ctx context.Context, issuer, audience string) (*OIDCAuthenticator, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	return NewOIDCAuthenticatorWithVerifier(provider.Verifier(&oidc.Config{ClientID: audience})), nil
}

// NewOIDCAuthenticatorWithVerifier wraps an existing verifier
func NewOIDCAuthenticatorWithVerifier(verifier *oidc.IDTokenVerifier) *OIDCAuthenticator {
	return &OIDCAuthenticator{verifier: verifier}
}

// Authenticate implements Authenticator
func (a *OIDCAuthenticator) Authenticate(r *http.Request) (*Merchant, error) {
	raw, err := BearerToken(r)
	if err != nil {
		return nil, err
	}

	token, err := a.verifier.Verify(r.Context(), raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims merchantClaims
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: failed to parse claims: %v", ErrInvalidToken, err)
	}

	name := claims.Name
	if name == "" {
		name = claims.PreferredUsername
	}

	return &Merchant{
		ID:    token.Subject,
		Name:  name,
		Email: claims.Email,
		Token: raw,
	}, nil
}
