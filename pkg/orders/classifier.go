package orders

import (
	"errors"
	"fmt"
)

// BucketKey names a group of statuses. The zero value is Unmatched.
type BucketKey string

// Unmatched is returned by Classify for orders no bucket claims
const Unmatched BucketKey = ""

const (
	BucketConfirmed BucketKey = "confirmed"
	BucketPending   BucketKey = "pending"
)

// ErrOverlappingBuckets is returned when two buckets claim the same status
var ErrOverlappingBuckets = errors.New("bucket match sets overlap")

// OverlapError reports which buckets share a status
type OverlapError struct {
	Status Status
	First  BucketKey
	Second BucketKey
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("status %q claimed by both %q and %q", e.Status, e.First, e.Second)
}

func (e *OverlapError) Unwrap() error {
	return ErrOverlappingBuckets
}

// Bucket groups statuses for display and aggregation
type Bucket struct {
	Key      BucketKey `json:"key"`
	Statuses []Status  `json:"statuses"`
	Label    string    `json:"label"`
	Hint     string    `json:"hint,omitempty"`
}

// Classifier assigns orders to disjoint buckets
type Classifier struct {
	buckets []Bucket
	index   map[Status]BucketKey
}

// NewClassifier validates that buckets are well formed and pairwise disjoint
func NewClassifier(buckets ...Bucket) (*Classifier, error) {
	c := &Classifier{
		buckets: make([]Bucket, 0, len(buckets)),
		index:   make(map[Status]BucketKey),
	}

	seen := make(map[BucketKey]bool, len(buckets))
	for _, b := range buckets {
		if b.Key == Unmatched {
			return nil, errors.New("bucket key must not be empty")
		}
		if seen[b.Key] {
			return nil, fmt.Errorf("duplicate bucket key %q", b.Key)
		}
		seen[b.Key] = true

		for _, s := range b.Statuses {
			if !s.Known() {
				return nil, fmt.Errorf("bucket %q: unknown status %q", b.Key, s)
			}
			if owner, ok := c.index[s]; ok {
				return nil, &OverlapError{Status: s, First: owner, Second: b.Key}
			}
			c.index[s] = b.Key
		}

		b.Statuses = append([]Status(nil), b.Statuses...)
		c.buckets = append(c.buckets, b)
	}

	return c, nil
}

// MustClassifier is NewClassifier for package-level registries; it panics on invalid buckets
func MustClassifier(buckets ...Bucket) *Classifier {
	c, err := NewClassifier(buckets...)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns the bucket claiming the order's status, or Unmatched
func (c *Classifier) Classify(o Order) BucketKey {
	return c.index[ParseStatus(o.Status)]
}

// Buckets returns the buckets in declaration order
func (c *Classifier) Buckets() []Bucket {
	return append([]Bucket(nil), c.buckets...)
}

var dashboard = MustClassifier(
	Bucket{
		Key:      BucketConfirmed,
		Statuses: []Status{StatusConfirmed, StatusReady, StatusInCompany},
		Label:    "ConfirmedOrders",
		Hint:     "green",
	},
	Bucket{
		Key:      BucketPending,
		Statuses: []Status{StatusPending, StatusConnectionFailed1, StatusConnectionFailed2, StatusConnectionFailed3, StatusPostponed},
		Label:    "NewOrders",
		Hint:     "blue",
	},
)

// DashboardClassifier groups orders into the confirmed and pending classes
// behind the overview cards
func DashboardClassifier() *Classifier {
	return dashboard
}

var summary = func() *Classifier {
	buckets := make([]Bucket, 0, len(statusOrder))
	for _, s := range statusOrder {
		info := s.Info()
		buckets = append(buckets, Bucket{
			Key:      BucketKey(s),
			Statuses: []Status{s},
			Label:    info.Label,
			Hint:     info.Color,
		})
	}
	return MustClassifier(buckets...)
}()

// SummaryClassifier has one bucket per canonical status, in display order
func SummaryClassifier() *Classifier {
	return summary
}
