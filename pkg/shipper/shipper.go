// Package shipper models the commerce platform side of shipping-rate
// calculation: the order aggregate, shipping methods and the rate a
// shipping gateway returns for them.
package shipper

import (
	"context"

	"github.com/google/uuid"
)

// Gateway computes a shipping rate for a shipment using a configured
// shipping method.
type Gateway interface {
	// GetRate returns the rate for the shipment, or a human-readable message
	// explaining why none could be produced. A non-nil error means the
	// carrier could not be reached at all.
	GetRate(ctx context.Context, methodID uuid.UUID, shipment *Shipment) (*ShippingRate, string, error)
}

// MethodStore loads shipping method definitions.
type MethodStore interface {
	// GetShippingMethod returns the method or ErrMethodNotFound.
	GetShippingMethod(ctx context.Context, id uuid.UUID) (*ShippingMethod, error)
}
