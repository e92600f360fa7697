// Package store persists the outcome of label generation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates no label was stored for the shipment.
var ErrNotFound = errors.New("not found")

// LabelRecord is the label state written back onto a shipment.
type LabelRecord struct {
	ShipmentID                   string
	Carrier                      string
	TrackingNumber               string
	ShipmentIdentificationNumber string
	Cost                         decimal.Decimal
	Currency                     string
	CreatedAt                    time.Time
}

// Attachment is a file attached to a shipment.
type Attachment struct {
	ID          string
	ShipmentID  string
	Name        string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// Store persists labels and their attachments.
type Store interface {
	// Migrate creates the schema or indexes the store needs.
	Migrate(ctx context.Context) error

	// Label returns the label of a shipment or ErrNotFound.
	Label(ctx context.Context, shipmentID string) (*LabelRecord, error)

	// SaveLabel stores the label and its attachment in one atomic write.
	// It returns a *shipper.DuplicateLabelError when the shipment already
	// has a tracking number; nothing is written in that case.
	SaveLabel(ctx context.Context, rec LabelRecord, att Attachment) error

	// Attachments returns the attachments of a shipment, oldest first.
	Attachments(ctx context.Context, shipmentID string) ([]Attachment, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
