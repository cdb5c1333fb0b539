// Package auth identifies the merchant behind each dashboard request.
//
// Two authenticators are provided:
//
//   - OIDCAuthenticator verifies "Authorization: Bearer" ID tokens against the
//     merchant identity provider with go-oidc and maps the subject, name and
//     email claims onto a Merchant.
//   - HeaderAuthenticator trusts a merchant ID header injected by an upstream
//     gateway. It is meant for deployments behind such a gateway and for local
//     development.
//
// Middleware wraps either one and stores the Merchant in the request context,
// where handlers read it back with FromContext:
//
//	router.Use(auth.NewMiddleware(authenticator, false).Handler)
//	merchant := auth.FromContext(r.Context())
//
// The raw bearer token is kept on the Merchant (never serialized) so calls to
// the store API can be made on the merchant's behalf.
package auth
