// Package storeapi is the client for the upstream store REST API. It reads a
// store's profile, orders and products for the dashboard, and the merchant's
// account usage for quota evaluation.
package storeapi
