// Package orders classifies store orders by status and aggregates them for
// the merchant dashboard.
//
// Statuses are a closed set of canonical values; raw strings that match none
// of them parse as Unrecognized. A Classifier groups statuses into buckets
// whose match sets are checked to be pairwise disjoint at construction, so
// an order is counted in at most one bucket. Orders no bucket claims are
// still part of GrandTotal, which keeps percentages relative to all orders.
//
//	agg := orders.Aggregate(list, orders.SummaryClassifier())
//	stats := orders.Summarize(list, productCount)
package orders
