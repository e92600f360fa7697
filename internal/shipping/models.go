package shipping

import (
	"time"

	"github.com/tournevent/ups/pkg/shipper"
	"github.com/tournevent/ups/pkg/shipper/ups"
	"github.com/tournevent/ups/pkg/shipper/weight"
)

// State is the operational status of a shipment.
type State string

const (
	StateDraft     State = "draft"
	StateWaiting   State = "waiting"
	StateAssigned  State = "assigned"
	StatePacked    State = "packed"
	StateDone      State = "done"
	StateCancelled State = "cancelled"
)

// Labelable reports whether a label may be generated in this state.
func (s State) Labelable() bool {
	return s == StatePacked || s == StateDone
}

// Order is the part of a sale order the pipeline reads.
type Order struct {
	ID               string
	Carrier          string
	Company          *shipper.Company
	Warehouse        shipper.Address
	ShipmentAddress  shipper.Address
	Lines            []weight.Line
	ServiceCode      string
	PackageType      string
	SaturdayDelivery bool
}

// Shipment is the part of an outgoing shipment the pipeline reads.
type Shipment struct {
	ID               string
	State            State
	Carrier          string
	Company          *shipper.Company
	Warehouse        shipper.Address
	DeliveryAddress  shipper.Address
	Moves            []weight.Line
	ServiceCode      string
	PackageType      string
	SaturdayDelivery bool
	TrackingNumber   string
}

// ShippingLine is the cost line added to an order.
type ShippingLine struct {
	Carrier     string
	ServiceCode string
	Description string
	Cost        shipper.Money
}

// Options holds the defaults applied when an order or shipment leaves a
// field empty.
type Options struct {
	DefaultPackageType string
	DefaultServiceCode string
	LockTTL            time.Duration
}

// The label lock is held across a confirm call and an accept call, each
// bounded by ups.RequestTimeout, and must not expire between them.
const (
	minLockTTL     = 2 * ups.RequestTimeout
	defaultLockTTL = 4 * ups.RequestTimeout
)

func (o Options) lockTTL() time.Duration {
	switch {
	case o.LockTTL <= 0:
		return defaultLockTTL
	case o.LockTTL < minLockTTL:
		return minLockTTL
	}
	return o.LockTTL
}
