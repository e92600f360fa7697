// Package shipper provides an abstraction layer for shipping carriers.
package shipper

import (
	"context"
)

// CarrierStrategy defines the operations a carrier integration provides to
// the rate and label pipeline.
type CarrierStrategy interface {
	// Name returns the carrier identifier (e.g., "ups").
	Name() string

	// WeightUnit returns the symbol of the unit package weights must be
	// expressed in ("kg" or "lb").
	WeightUnit() string

	// Rate returns the price of the requested service.
	Rate(ctx context.Context, req *ShippingRequest) (*RateQuote, error)

	// Shop returns a quote for every service the carrier offers on the route.
	Shop(ctx context.Context, req *ShippingRequest) ([]RateQuote, error)

	// Confirm validates a shipment with the carrier and returns the digest
	// needed to accept it.
	Confirm(ctx context.Context, req *ShippingRequest) (*Confirmation, error)

	// Accept books a confirmed shipment and returns its label.
	Accept(ctx context.Context, c *Confirmation) (*LabelResult, error)
}
