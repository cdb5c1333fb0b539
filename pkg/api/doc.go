// Package api provides the HTTP REST API of the storedash merchant dashboard.
//
// # Overview
//
// The API serves the store overview (order statistics, per-status summary
// and quota banner), the plan catalog, and the upgrade checkout that ends in
// a subscription request for manual review.
//
// # Architecture
//
// The API is built on gorilla/mux and organized into handler groups, each
// registering its own routes:
//
//   - Plans: list and fetch the upgrade plans (public)
//   - Stores: dashboard overview and the merchant's quota
//   - Upgrade: plan selection, checkout, payment proof upload, confirmation
//   - Subscriptions: the merchant's submitted requests
//
// Every route except the plan catalog requires an authenticated merchant.
// Quota is evaluated on each authenticated request and exposed through the
// X-Quota-* response headers. Checkout writes are rate limited per merchant.
//
// # Errors
//
// Errors are JSON objects with an "error" message. A checkout opened without
// a plan selection answers 409 with a "redirect" to the plan catalog.
// Upstream failures (proof storage, submission backend, store API) answer
// 502. Validation failures answer 400 with per-field "details".
package api
