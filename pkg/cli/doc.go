// Package cli provides the storedash command-line interface for support staff.
//
// # Overview
//
// The CLI answers the questions merchants ask support without going through
// the dashboard: what the plans cost, whether an account is over its order
// allowance, what a store's order breakdown looks like, and which payment
// link a merchant should have received.
//
// # Commands
//
// plans: List the upgrade plans
//
//	storedash-cli plans
//	storedash-cli plans --json
//
// quota: Evaluate an account's order allowance
//
//	storedash-cli quota --used 150 --limit 150
//	storedash-cli quota --used 900 --limit 290 --paid
//
// summary: Summarize an exported order list (JSON array, "-" for stdin)
//
//	storedash-cli summary --file orders.json --products 12
//
// deeplink: Print the WhatsApp link for sending a payment receipt
//
//	storedash-cli deeplink --plan growth --phone 213698320894
package cli
