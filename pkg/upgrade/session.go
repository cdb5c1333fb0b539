package upgrade

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session is an open checkout for one merchant. It lives until the request
// is submitted or it expires.
type Session struct {
	MerchantID string    `json:"merchant_id"`
	Intent     Intent    `json:"intent"`
	State      State     `json:"state"`
	ProofURL   string    `json:"proof_url,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
	OpenedAt   time.Time `json:"opened_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PaymentInfo is the receiving account for manual transfers
type PaymentInfo struct {
	CCP         string `json:"ccp"`
	RIP         string `json:"rip"`
	AccountName string `json:"name"`
	Phone       string `json:"phone"`
}

// Summary describes what the merchant is paying for
type Summary struct {
	PlanID       string          `json:"plan_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Orders       string          `json:"orders"`
	Price        decimal.Decimal `json:"price"`
	PriceDisplay string          `json:"price_display"`
	Currency     string          `json:"currency"`
	Term         string          `json:"term"`
}

// Checkout is everything the checkout page renders
type Checkout struct {
	Session  *Session    `json:"session"`
	Summary  Summary     `json:"summary"`
	Payment  PaymentInfo `json:"payment"`
	DeepLink string      `json:"deep_link"`
}
