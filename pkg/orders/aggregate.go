package orders

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"

	"github.com/nextcommerce/storedash/pkg/money"
)

// Order is a store order as returned by the store API
type Order struct {
	ID     string          `json:"_id"`
	Status string          `json:"status"`
	Price  decimal.Decimal `json:"price"`
}

// UnmarshalJSON reads the store API's "_id" and falls back to "id" as used
// by exported order files.
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*o = Order(aux.plain)
	if o.ID == "" {
		o.ID = aux.AltID
	}
	return nil
}

// BucketTotals is the aggregate of one bucket
type BucketTotals struct {
	Key        BucketKey       `json:"key"`
	Label      string          `json:"label"`
	Hint       string          `json:"hint,omitempty"`
	Count      int             `json:"count"`
	Value      decimal.Decimal `json:"value"`
	Percentage float64         `json:"percentage"`
}

// Aggregation holds per-bucket totals. GrandTotal counts every order,
// including those no bucket claims, so bucket counts may sum to less.
type Aggregation struct {
	Buckets    []BucketTotals `json:"buckets"`
	GrandTotal int            `json:"grandTotal"`
	Unmatched  int            `json:"unmatched"`
}

// Bucket returns the totals for key
func (a Aggregation) Bucket(key BucketKey) (BucketTotals, bool) {
	for _, b := range a.Buckets {
		if b.Key == key {
			return b, true
		}
	}
	return BucketTotals{}, false
}

// Empty reports whether there were no orders at all
func (a Aggregation) Empty() bool {
	return a.GrandTotal == 0
}

// Aggregate counts and sums orders per bucket of c
func Aggregate(orders []Order, c *Classifier) Aggregation {
	buckets := c.Buckets()
	result := Aggregation{
		Buckets:    make([]BucketTotals, len(buckets)),
		GrandTotal: len(orders),
	}

	pos := make(map[BucketKey]int, len(buckets))
	for i, b := range buckets {
		pos[b.Key] = i
		result.Buckets[i] = BucketTotals{
			Key:   b.Key,
			Label: b.Label,
			Hint:  b.Hint,
			Value: decimal.Zero,
		}
	}

	for _, o := range orders {
		key := c.Classify(o)
		if key == Unmatched {
			result.Unmatched++
			continue
		}
		totals := &result.Buckets[pos[key]]
		totals.Count++
		totals.Value = totals.Value.Add(o.Price)
	}

	for i := range result.Buckets {
		result.Buckets[i].Percentage = Percentage(result.Buckets[i].Count, result.GrandTotal)
	}

	return result
}

// Percentage returns count/total*100 rounded to one decimal, or 0 when total is 0
func Percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// Stats are the dashboard overview figures
type Stats struct {
	SoldProducts    int             `json:"soldProducts"`
	NewOrders       int             `json:"newOrders"`
	ConfirmedOrders int             `json:"confirmedOrders"`
	ConfirmedTotal  decimal.Decimal `json:"confirmedTotal"`
	Earnings        decimal.Decimal `json:"earnings"`
	EarningsDisplay string          `json:"earningsDisplay"`
}

// Summarize derives the overview figures from orders and the store's product count
func Summarize(orders []Order, productCount int) Stats {
	agg := Aggregate(orders, DashboardClassifier())
	confirmed, _ := agg.Bucket(BucketConfirmed)
	pending, _ := agg.Bucket(BucketPending)

	return Stats{
		SoldProducts:    productCount,
		NewOrders:       pending.Count,
		ConfirmedOrders: confirmed.Count,
		ConfirmedTotal:  confirmed.Value,
		Earnings:        confirmed.Value,
		EarningsDisplay: money.Format(confirmed.Value) + " DA",
	}
}
