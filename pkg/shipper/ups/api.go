package ups

import (
	"context"
	"encoding/xml"
)

// APIClient defines the interface for UPS XML API operations.
// This abstraction allows for mock implementations during testing
// and the real HTTP implementation in production.
type APIClient interface {
	// Rate sends a RatingServiceSelectionRequest.
	Rate(ctx context.Context, req *RatingRequest) (*RatingResponse, error)

	// Confirm sends a ShipmentConfirmRequest.
	Confirm(ctx context.Context, req *ShipmentConfirmRequest) (*ShipmentConfirmResponse, error)

	// Accept sends a ShipmentAcceptRequest.
	Accept(ctx context.Context, req *ShipmentAcceptRequest) (*ShipmentAcceptResponse, error)
}

// APIError represents an error reported by the UPS API.
type APIError struct {
	Code        string
	Description string
	StatusCode  int
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Description
}

// ============================================================================
// Shared elements
// ============================================================================

// AccessRequest carries the credentials prepended to every request document.
type AccessRequest struct {
	XMLName             xml.Name `xml:"AccessRequest"`
	AccessLicenseNumber string   `xml:"AccessLicenseNumber"`
	UserID              string   `xml:"UserId"`
	Password            string   `xml:"Password"`
}

// Empty is an indicator element whose presence carries the meaning.
type Empty struct{}

// Request is the request header of every UPS document.
type Request struct {
	TransactionReference *TransactionReference `xml:"TransactionReference,omitempty"`
	RequestAction        string                `xml:"RequestAction"`
	RequestOption        string                `xml:"RequestOption,omitempty"`
}

// TransactionReference echoes a caller value in the response.
type TransactionReference struct {
	CustomerContext string `xml:"CustomerContext"`
}

// CodeDescription is the generic code element.
type CodeDescription struct {
	Code        string `xml:"Code"`
	Description string `xml:"Description,omitempty"`
}

// Address is a UPS address element.
type Address struct {
	AddressLine1      string `xml:"AddressLine1,omitempty"`
	AddressLine2      string `xml:"AddressLine2,omitempty"`
	City              string `xml:"City"`
	StateProvinceCode string `xml:"StateProvinceCode,omitempty"`
	PostalCode        string `xml:"PostalCode,omitempty"`
	CountryCode       string `xml:"CountryCode"`
}

// Shipper is the party whose account is billed.
type Shipper struct {
	Name                    string  `xml:"Name"`
	AttentionName           string  `xml:"AttentionName,omitempty"`
	TaxIdentificationNumber string  `xml:"TaxIdentificationNumber,omitempty"`
	PhoneNumber             string  `xml:"PhoneNumber,omitempty"`
	FaxNumber               string  `xml:"FaxNumber,omitempty"`
	EMailAddress            string  `xml:"EMailAddress,omitempty"`
	ShipperNumber           string  `xml:"ShipperNumber"`
	Address                 Address `xml:"Address"`
}

// Location is a ShipTo or ShipFrom element.
type Location struct {
	CompanyName             string  `xml:"CompanyName"`
	AttentionName           string  `xml:"AttentionName,omitempty"`
	TaxIdentificationNumber string  `xml:"TaxIdentificationNumber,omitempty"`
	PhoneNumber             string  `xml:"PhoneNumber,omitempty"`
	FaxNumber               string  `xml:"FaxNumber,omitempty"`
	EMailAddress            string  `xml:"EMailAddress,omitempty"`
	Address                 Address `xml:"Address"`
}

// MonetaryAmount is a currency code and a decimal string.
type MonetaryAmount struct {
	CurrencyCode  string `xml:"CurrencyCode,omitempty"`
	MonetaryValue string `xml:"MonetaryValue"`
}

// Package is a parcel element.
type Package struct {
	PackagingType         CodeDescription        `xml:"PackagingType"`
	PackageWeight         PackageWeight          `xml:"PackageWeight"`
	PackageServiceOptions *PackageServiceOptions `xml:"PackageServiceOptions,omitempty"`
}

// PackageWeight is the weight of a parcel.
type PackageWeight struct {
	UnitOfMeasurement CodeDescription `xml:"UnitOfMeasurement"`
	Weight            string          `xml:"Weight"`
}

// PackageServiceOptions holds per-parcel options.
type PackageServiceOptions struct {
	InsuredValue *MonetaryAmount `xml:"InsuredValue,omitempty"`
}

// RateInformation requests account specific rates.
type RateInformation struct {
	NegotiatedRatesIndicator *Empty `xml:"NegotiatedRatesIndicator,omitempty"`
}

// NegotiatedRates holds account specific charges.
type NegotiatedRates struct {
	NetSummaryCharges NetSummaryCharges `xml:"NetSummaryCharges"`
}

// NetSummaryCharges is the negotiated grand total.
type NetSummaryCharges struct {
	GrandTotal MonetaryAmount `xml:"GrandTotal"`
}

// Response is the response header of every UPS document.
type Response struct {
	TransactionReference      *TransactionReference `xml:"TransactionReference,omitempty"`
	ResponseStatusCode        string                `xml:"ResponseStatusCode"`
	ResponseStatusDescription string                `xml:"ResponseStatusDescription,omitempty"`
	Errors                    []ResponseError       `xml:"Error,omitempty"`
}

// ResponseError is an error element inside a response header.
type ResponseError struct {
	ErrorSeverity    string `xml:"ErrorSeverity"`
	ErrorCode        string `xml:"ErrorCode"`
	ErrorDescription string `xml:"ErrorDescription"`
}

// Err returns the first hard error of a failed response, or nil.
func (r Response) Err() error {
	if r.ResponseStatusCode == "1" {
		return nil
	}
	for _, e := range r.Errors {
		if e.ErrorSeverity != "Warning" {
			return &APIError{Code: e.ErrorCode, Description: e.ErrorDescription}
		}
	}
	if len(r.Errors) > 0 {
		return &APIError{Code: r.Errors[0].ErrorCode, Description: r.Errors[0].ErrorDescription}
	}
	return &APIError{Code: "UNKNOWN", Description: r.ResponseStatusDescription}
}

// ShipmentCharges is the charge summary of a shipment.
type ShipmentCharges struct {
	TransportationCharges *MonetaryAmount `xml:"TransportationCharges,omitempty"`
	ServiceOptionsCharges *MonetaryAmount `xml:"ServiceOptionsCharges,omitempty"`
	TotalCharges          MonetaryAmount  `xml:"TotalCharges"`
}

// ============================================================================
// Rate
// ============================================================================

// RatingRequest is a RatingServiceSelectionRequest document.
type RatingRequest struct {
	XMLName  xml.Name     `xml:"RatingServiceSelectionRequest"`
	Request  Request      `xml:"Request"`
	Shipment RateShipment `xml:"Shipment"`
}

// RateShipment is the shipment of a rating request.
type RateShipment struct {
	Shipper         Shipper          `xml:"Shipper"`
	ShipTo          Location         `xml:"ShipTo"`
	ShipFrom        Location         `xml:"ShipFrom"`
	Service         *CodeDescription `xml:"Service,omitempty"`
	Packages        []Package        `xml:"Package"`
	RateInformation *RateInformation `xml:"RateInformation,omitempty"`
}

// RatingResponse is a RatingServiceSelectionResponse document.
type RatingResponse struct {
	XMLName        xml.Name        `xml:"RatingServiceSelectionResponse"`
	Response       Response        `xml:"Response"`
	RatedShipments []RatedShipment `xml:"RatedShipment"`
}

// RatedShipment is the price of one service.
type RatedShipment struct {
	Service                  CodeDescription  `xml:"Service"`
	TotalCharges             MonetaryAmount   `xml:"TotalCharges"`
	NegotiatedRates          *NegotiatedRates `xml:"NegotiatedRates,omitempty"`
	GuaranteedDaysToDelivery string           `xml:"GuaranteedDaysToDelivery,omitempty"`
	ScheduledDeliveryTime    string           `xml:"ScheduledDeliveryTime,omitempty"`
}

// ============================================================================
// Confirm
// ============================================================================

// ShipmentConfirmRequest is a ShipmentConfirmRequest document.
type ShipmentConfirmRequest struct {
	XMLName            xml.Name           `xml:"ShipmentConfirmRequest"`
	Request            Request            `xml:"Request"`
	Shipment           ConfirmShipment    `xml:"Shipment"`
	LabelSpecification LabelSpecification `xml:"LabelSpecification"`
}

// ConfirmShipment is the shipment of a confirm request.
type ConfirmShipment struct {
	Shipper                Shipper                 `xml:"Shipper"`
	ShipTo                 Location                `xml:"ShipTo"`
	ShipFrom               Location                `xml:"ShipFrom"`
	PaymentInformation     PaymentInformation      `xml:"PaymentInformation"`
	Service                CodeDescription         `xml:"Service"`
	ShipmentServiceOptions *ShipmentServiceOptions `xml:"ShipmentServiceOptions,omitempty"`
	Packages               []Package               `xml:"Package"`
	RateInformation        *RateInformation        `xml:"RateInformation,omitempty"`
}

// PaymentInformation bills the shipment.
type PaymentInformation struct {
	Prepaid Prepaid `xml:"Prepaid"`
}

// Prepaid bills the shipper account.
type Prepaid struct {
	BillShipper BillShipper `xml:"BillShipper"`
}

// BillShipper names the billed account.
type BillShipper struct {
	AccountNumber string `xml:"AccountNumber"`
}

// ShipmentServiceOptions holds shipment level options.
type ShipmentServiceOptions struct {
	SaturdayDelivery *Empty `xml:"SaturdayDelivery,omitempty"`
}

// LabelSpecification selects the label format.
type LabelSpecification struct {
	LabelPrintMethod CodeDescription `xml:"LabelPrintMethod"`
	HTTPUserAgent    string          `xml:"HTTPUserAgent,omitempty"`
	LabelImageFormat CodeDescription `xml:"LabelImageFormat"`
}

// ShipmentConfirmResponse is a ShipmentConfirmResponse document.
type ShipmentConfirmResponse struct {
	XMLName                      xml.Name         `xml:"ShipmentConfirmResponse"`
	Response                     Response         `xml:"Response"`
	ShipmentCharges              ShipmentCharges  `xml:"ShipmentCharges"`
	NegotiatedRates              *NegotiatedRates `xml:"NegotiatedRates,omitempty"`
	ShipmentIdentificationNumber string           `xml:"ShipmentIdentificationNumber"`
	ShipmentDigest               string           `xml:"ShipmentDigest"`
}

// ============================================================================
// Accept
// ============================================================================

// ShipmentAcceptRequest is a ShipmentAcceptRequest document.
type ShipmentAcceptRequest struct {
	XMLName        xml.Name `xml:"ShipmentAcceptRequest"`
	Request        Request  `xml:"Request"`
	ShipmentDigest string   `xml:"ShipmentDigest"`
}

// ShipmentAcceptResponse is a ShipmentAcceptResponse document.
type ShipmentAcceptResponse struct {
	XMLName         xml.Name        `xml:"ShipmentAcceptResponse"`
	Response        Response        `xml:"Response"`
	ShipmentResults ShipmentResults `xml:"ShipmentResults"`
}

// ShipmentResults holds the booked shipment.
type ShipmentResults struct {
	ShipmentCharges              ShipmentCharges  `xml:"ShipmentCharges"`
	NegotiatedRates              *NegotiatedRates `xml:"NegotiatedRates,omitempty"`
	ShipmentIdentificationNumber string           `xml:"ShipmentIdentificationNumber"`
	PackageResults               []PackageResult  `xml:"PackageResults"`
}

// PackageResult is the tracking number and label of one parcel.
type PackageResult struct {
	TrackingNumber string     `xml:"TrackingNumber"`
	LabelImage     LabelImage `xml:"LabelImage"`
}

// LabelImage is a base64 encoded label.
type LabelImage struct {
	LabelImageFormat CodeDescription `xml:"LabelImageFormat"`
	GraphicImage     string          `xml:"GraphicImage"`
}
