package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/nextcommerce/storedash/pkg/validation"
)

// ErrSubmission wraps every failure to record a subscription request.
// Submissions are never retried automatically.
var ErrSubmission = errors.New("subscription request submission failed")

// Request statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Request is a merchant's claim to have paid for a plan, awaiting manual
// review. JSON names match the upstream offers API.
type Request struct {
	ID              string    `json:"_id,omitempty"`
	UserID          string    `json:"user" validate:"required"`
	Price           int64     `json:"price" validate:"gt=0"`
	Orders          string    `json:"orders" validate:"required,numeric"`
	OfferTitle      string    `json:"offerTitle" validate:"required,max=128"`
	PaymentProofURL string    `json:"PaymentImage" validate:"required,url"`
	UserName        string    `json:"userName"`
	Status          string    `json:"status" validate:"oneof=pending approved rejected"`
	Date            time.Time `json:"date"`
}

// Validate checks the request is complete
func (r Request) Validate() error {
	return validation.Struct(r)
}

// Ack confirms a request was recorded
type Ack struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	ReceivedAt time.Time `json:"received_at"`
}

// Submitter records subscription requests
type Submitter interface {
	Submit(ctx context.Context, req Request) (Ack, error)
}

// Lister reads back a merchant's requests
type Lister interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]Request, error)
}
