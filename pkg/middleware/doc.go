// Package middleware provides per-merchant rate limiting for the checkout
// write endpoints.
//
// Two limiters implement Limiter:
//
//   - RateLimiter: in-process token bucket, used when no Redis is configured
//   - DistributedRateLimiter: Redis fixed window shared by all instances
//
// RateLimitMiddleware keys requests by the authenticated merchant, falling
// back to the client IP, so it must run after auth.Middleware:
//
//	limiter := middleware.NewDistributedRateLimiter(redisClient, cfg, "ratelimit:checkout")
//	checkout.Use(authMiddleware.Handler)
//	checkout.Use(middleware.NewRateLimitMiddleware(limiter).Handler)
//
// Limiter errors fail open by default.
package middleware
