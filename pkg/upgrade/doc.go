// Package upgrade implements the manual plan-upgrade workflow.
//
// A merchant moves through these states:
//
//	browsing -> plan_selected -> checkout_loaded -> proof_captured -> submitted
//	                                                 ^          |
//	                                                 +-- submit_failed
//
// SelectPlan stores an Intent for the merchant. LoadCheckout consumes it and
// opens a Session; opening checkout without an intent (or after the last
// session was submitted) yields ErrNoIntent so the caller can redirect to the
// catalog. CaptureProof uploads the receipt and Submit records the
// subscription request.
//
// Intents and sessions live in a Store: RedisStore when several API
// instances share state, MemoryStore otherwise. Uploads and submissions hold
// a per-merchant lock, so a second concurrent attempt gets ErrInFlight.
package upgrade
