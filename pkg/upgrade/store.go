package upgrade

import (
	"context"
	"errors"
	"time"
)

// errCorruptIntent marks a stored intent that could not be decoded
var errCorruptIntent = errors.New("corrupt plan intent")

// Store holds the per-merchant intent and checkout session. Implementations
// must be safe for concurrent use; writes are last-write-wins.
type Store interface {
	// PutIntent replaces any previous intent for the merchant
	PutIntent(ctx context.Context, merchantID string, intent Intent, ttl time.Duration) error
	// TakeIntent atomically reads and deletes the intent
	TakeIntent(ctx context.Context, merchantID string) (Intent, bool, error)

	GetSession(ctx context.Context, merchantID string) (*Session, bool, error)
	PutSession(ctx context.Context, session *Session, ttl time.Duration) error
	DeleteSession(ctx context.Context, merchantID string) error

	// Lock acquires the merchant's single in-flight slot or returns ErrInFlight
	Lock(ctx context.Context, merchantID string, ttl time.Duration) (unlock func(), err error)
}
