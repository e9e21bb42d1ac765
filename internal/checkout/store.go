// Package checkout stages the two-step checkout selections (payment method,
// delivery calendar slot) between the checkout pages and order creation.
package checkout

import (
	"context"
	"errors"
	"time"
)

// ErrNotStaged is returned when a leg has not been staged for the customer.
var ErrNotStaged = errors.New("checkout selection not staged")

// Staging holds both checkout legs for one customer.
type Staging struct {
	PaymentMethod string `json:"payment_method"`
	DeliveryDate  string `json:"delivery_date"` // 2006-01-02
	DeliveryTime  string `json:"delivery_time"` // 15:04
}

// Store persists checkout staging per customer with a TTL, so abandoned
// checkouts expire on their own.
type Store interface {
	StagePayment(ctx context.Context, userID uint, method string) error
	StageDelivery(ctx context.Context, userID uint, date, timeOfDay string) error
	// Get returns the staged legs, or ErrNotStaged when nothing is staged.
	Get(ctx context.Context, userID uint) (*Staging, error)
	Clear(ctx context.Context, userID uint) error
}

// TTL is carried by implementations; the default matches a browsing session.
const DefaultTTL = 30 * time.Minute
