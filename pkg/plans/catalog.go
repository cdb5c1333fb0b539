package plans

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nextcommerce/storedash/pkg/money"
)

// ErrPlanNotFound is returned for plan IDs absent from the catalog
var ErrPlanNotFound = errors.New("plan not found")

// BillingTerm is the renewal period of a plan
type BillingTerm string

const TermMonthly BillingTerm = "per_month"

// Plan is one purchasable tier. Catalog entries are immutable after construction.
type Plan struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	PriceDisplay string          `json:"price_display"`
	Currency     string          `json:"currency"`
	OrderLimit   int             `json:"order_limit"`
	BillingTerm  BillingTerm     `json:"billing_term"`
	Features     []string        `json:"features"`
	Badge        string          `json:"badge,omitempty"`
	IsPopular    bool            `json:"is_popular"`
}

// Catalog is an ordered, read-only set of plans
type Catalog struct {
	plans []Plan
	byID  map[string]int
}

// definition is the source form of a plan, prices as written for display
type definition struct {
	id, name, title, description string
	price                        string
	orderLimit                   int
	features                     []string
	badge                        string
	popular                      bool
}

var defaultDefinitions = []definition{
	{
		id:          "starter",
		name:        "plan_starter_name",
		title:       "Starter Plan",
		description: "Basic monthly access",
		price:       "990",
		orderLimit:  150,
		features:    []string{"up_to_150_orders", "basic_support", "remove_branding"},
	},
	{
		id:          "growth",
		name:        "plan_growth_name",
		title:       "Growth Plan",
		description: "Most popular choice",
		price:       "1,500",
		orderLimit:  290,
		features:    []string{"up_to_290_orders", "priority_support", "analytics", "everything_in_starter"},
		badge:       "most_popular",
		popular:     true,
	},
	{
		id:          "scale",
		name:        "plan_scale_name",
		title:       "Scale Plan",
		description: "Maximum performance",
		price:       "1,900",
		orderLimit:  5000,
		features:    []string{"up_to_5000_orders", "vip_support", "api_access", "everything_in_growth"},
		badge:       "best_value",
	},
}

// Currency of every compiled-in plan
const Currency = "DZD"

var defaultCatalog = mustBuild(defaultDefinitions)

// DefaultCatalog returns the compiled-in catalog, lowest tier first
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// NewCatalog builds a catalog from plans, rejecting duplicate or empty IDs
// and non-positive order limits
func NewCatalog(plans ...Plan) (*Catalog, error) {
	c := &Catalog{
		plans: make([]Plan, 0, len(plans)),
		byID:  make(map[string]int, len(plans)),
	}
	for _, p := range plans {
		if p.ID == "" {
			return nil, errors.New("plan id is required")
		}
		key := strings.ToLower(p.ID)
		if _, dup := c.byID[key]; dup {
			return nil, fmt.Errorf("duplicate plan id %q", p.ID)
		}
		if p.OrderLimit <= 0 {
			return nil, fmt.Errorf("plan %q: order limit must be positive", p.ID)
		}
		if p.PriceDisplay == "" {
			p.PriceDisplay = FormatPrice(p.Price)
		}
		c.byID[key] = len(c.plans)
		c.plans = append(c.plans, p)
	}
	return c, nil
}

func mustBuild(defs []definition) *Catalog {
	plans := make([]Plan, 0, len(defs))
	for _, d := range defs {
		price, err := ParsePrice(d.price)
		if err != nil {
			panic(fmt.Sprintf("plan %s: %v", d.id, err))
		}
		plans = append(plans, Plan{
			ID:           d.id,
			Name:         d.name,
			Title:        d.title,
			Description:  d.description,
			Price:        price,
			PriceDisplay: d.price,
			Currency:     Currency,
			OrderLimit:   d.orderLimit,
			BillingTerm:  TermMonthly,
			Features:     d.features,
			Badge:        d.badge,
			IsPopular:    d.popular,
		})
	}

	c, err := NewCatalog(plans...)
	if err != nil {
		panic(err)
	}
	return c
}

// List returns the plans in display order
func (c *Catalog) List() []Plan {
	out := make([]Plan, len(c.plans))
	for i, p := range c.plans {
		out[i] = p.clone()
	}
	return out
}

// Get returns the plan with id. Lookup is case-insensitive.
func (c *Catalog) Get(id string) (Plan, error) {
	i, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrPlanNotFound, id)
	}
	return c.plans[i].clone(), nil
}

// Describe returns the checkout title and description for id, falling back to
// the raw id with no description for plans the catalog does not know
func (c *Catalog) Describe(id string) (title, description string) {
	p, err := c.Get(id)
	if err != nil {
		return id, ""
	}
	return p.Title, p.Description
}

func (p Plan) clone() Plan {
	p.Features = append([]string(nil), p.Features...)
	return p
}

// ParsePrice reads a display price such as "1,500" into an exact amount
func ParsePrice(s string) (decimal.Decimal, error) {
	return money.Parse(s)
}

// FormatPrice renders a price with thousands separators: 1500 -> "1,500"
func FormatPrice(d decimal.Decimal) string {
	return money.Format(d)
}
