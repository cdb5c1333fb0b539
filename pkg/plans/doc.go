// Package plans holds the catalog of paid tiers a merchant can upgrade to.
//
// The catalog is compiled in. Prices are written the way they are displayed
// ("1,500") and parsed once, when the catalog is built, so everything
// downstream works with exact decimal amounts.
package plans
