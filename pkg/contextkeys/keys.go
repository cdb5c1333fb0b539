// Package contextkeys provides centralized context key definitions
//
// All context keys used across the service are defined here so that the
// setters (middleware) and the readers (handlers, logger) agree on one type.
//
// USAGE PATTERN:
//
//	import "github.com/nextcommerce/storedash/pkg/contextkeys"
//	ctx = contextkeys.WithMerchant(ctx, merchant)
//	merchant := ctx.Value(contextkeys.MerchantKey).(*auth.Merchant)
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// MerchantKey contains *auth.Merchant
	// Set by: auth.Middleware (pkg/auth/middleware.go)
	// Required by: dashboard, quota, checkout and subscription endpoints
	MerchantKey Key = "merchant"

	// QuotaKey contains quota.State
	// Set by: quota.Middleware (pkg/quota/middleware.go)
	// Used by: handlers that render the usage banner
	QuotaKey Key = "quota_state"

	// RequestIDKey contains request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware
	// Used by: Logger, outbound store API calls
	RequestIDKey Key = "request_id"

	// UserIDKey contains the merchant user ID string
	// Set by: auth.Middleware after the bearer token is verified
	// Used by: Logger
	UserIDKey Key = "user_id"

	// LoggerKey contains *observability.Logger
	// Set by: httputil.LoggingMiddleware
	LoggerKey Key = "logger"
)

// WithMerchant adds the authenticated merchant to the context
func WithMerchant(ctx context.Context, merchant interface{}) context.Context {
	return context.WithValue(ctx, MerchantKey, merchant)
}

// WithQuota adds an evaluated quota state to the context
func WithQuota(ctx context.Context, state interface{}) context.Context {
	return context.WithValue(ctx, QuotaKey, state)
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithUserID adds user ID to the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// WithLogger adds logger to the context
func WithLogger(ctx context.Context, logger interface{}) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetUserID retrieves user ID from context
func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}
