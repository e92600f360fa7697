package shipper

import (
	"github.com/shopspring/decimal"
)

// Party is the owner of an address.
type Party struct {
	Name               string
	Phone              string
	Fax                string
	Email              string
	TaxID              string
	TaxExemptionNumber string
}

// Address is a postal address as stored by the ERP.
type Address struct {
	Name            string
	Street          string
	Street2         string
	City            string
	CountryCode     string // ISO 3166-1 alpha-2, e.g., "US"
	SubdivisionCode string // ISO 3166-2, e.g., "US-FL"
	PostalCode      string
	Party           Party
}

// Company is the company on whose behalf the shipment is sent.
type Company struct {
	Name  string
	TaxID string
}

// Package is a single parcel handed to the carrier.
type Package struct {
	TypeCode     string
	Weight       decimal.Decimal
	WeightUnit   string
	InsuredValue Money
}

// ShippingRequest is the carrier-neutral description of a shipment to rate,
// confirm or label.
type ShippingRequest struct {
	Company          *Company
	Shipper          Address
	ShipFrom         Address
	ShipTo           Address
	Packages         []Package
	ServiceCode      string
	SaturdayDelivery bool
	Reference        string
}

// RateMetadata carries the delivery estimates returned with a quote.
type RateMetadata struct {
	ScheduledDeliveryTime    string
	GuaranteedDaysToDelivery *int
}

// RateQuote is a priced carrier service.
type RateQuote struct {
	Carrier     string
	ServiceCode string
	DisplayName string
	Cost        Money
	Metadata    RateMetadata
}

// Confirmation is the carrier's answer to a confirm request.
type Confirmation struct {
	ShipmentIdentificationNumber string
	Digest                       string
	Charges                      Money
}

// LabelResult is the outcome of accepting a shipment.
type LabelResult struct {
	TrackingNumber               string
	ShipmentIdentificationNumber string
	Charges                      Money
	Image                        []byte
	ImageFormat                  string
}
