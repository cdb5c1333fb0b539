package upgrade

import (
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nextcommerce/storedash/pkg/plans"
	"github.com/nextcommerce/storedash/pkg/validation"
)

var (
	// ErrNoIntent is returned when checkout is opened without a usable plan
	// selection. Callers should send the merchant back to the plan catalog.
	ErrNoIntent = errors.New("no plan selected")
	// ErrInFlight is returned while another upload or submission for the
	// same merchant is still running
	ErrInFlight = errors.New("another checkout operation is in progress")
)

// Intent is the plan selection handed from the catalog page to checkout
type Intent struct {
	PlanID       string          `json:"plan_id" validate:"required,max=64"`
	OrderLimit   int             `json:"order_limit" validate:"gt=0"`
	Price        decimal.Decimal `json:"price" validate:"gt=0"`
	PriceDisplay string          `json:"price_display"`
	SelectedAt   time.Time       `json:"selected_at"`
}

// NewIntent captures plan as selected at now
func NewIntent(plan plans.Plan, now time.Time) Intent {
	return Intent{
		PlanID:       plan.ID,
		OrderLimit:   plan.OrderLimit,
		Price:        plan.Price,
		PriceDisplay: plan.PriceDisplay,
		SelectedAt:   now.UTC(),
	}
}

// Validate checks the intent is complete enough to open a checkout
func (i Intent) Validate() error {
	return validation.Struct(i)
}

// Orders is the order allowance as carried on subscription requests
func (i Intent) Orders() string {
	return strconv.Itoa(i.OrderLimit)
}
