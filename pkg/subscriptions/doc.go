// Package subscriptions records plan-upgrade requests for manual review.
//
// A Request is created once the merchant has uploaded a payment proof and
// confirmed checkout. Two Submitters exist: SQLStore writes to the service's
// own database (schema managed with goose, see RunMigrations) and
// HTTPSubmitter forwards to the upstream offers API. Both wrap failures in
// ErrSubmission and neither retries.
package subscriptions
