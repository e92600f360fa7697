package shipper

import (
	"errors"
	"fmt"
	"strings"
)

// CarrierRequestError represents a failed exchange with a carrier. Message is
// the carrier's own description of the failure.
type CarrierRequestError struct {
	Carrier    string
	Operation  string
	Code       string
	Message    string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *CarrierRequestError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s request failed (%s): %s", e.Carrier, e.Operation, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s request failed: %s", e.Carrier, e.Operation, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CarrierRequestError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for CarrierRequestError. An empty target code
// matches any carrier request error.
func (e *CarrierRequestError) Is(target error) bool {
	t, ok := target.(*CarrierRequestError)
	if !ok {
		return false
	}
	return t.Code == "" || e.Code == t.Code
}

// NewCarrierRequestError creates a new CarrierRequestError.
func NewCarrierRequestError(carrier, operation, message string) *CarrierRequestError {
	return &CarrierRequestError{
		Carrier:   carrier,
		Operation: operation,
		Message:   message,
	}
}

// WithCode sets the carrier error code.
func (e *CarrierRequestError) WithCode(code string) *CarrierRequestError {
	e.Code = code
	return e
}

// WithCause adds a cause to the error.
func (e *CarrierRequestError) WithCause(err error) *CarrierRequestError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *CarrierRequestError) WithStatusCode(code int) *CarrierRequestError {
	e.StatusCode = code
	return e
}

// ConfigurationIncompleteError indicates carrier settings that are missing
// or invalid. No request is sent while it is returned.
type ConfigurationIncompleteError struct {
	Carrier string
	Missing []string
}

func (e *ConfigurationIncompleteError) Error() string {
	return fmt.Sprintf("%s settings are incomplete: %s", e.Carrier, strings.Join(e.Missing, ", "))
}

// AddressVariant names the role an address plays in a carrier request.
type AddressVariant string

const (
	AddressShipFrom AddressVariant = "ship-from"
	AddressShipTo   AddressVariant = "ship-to"
	AddressShipper  AddressVariant = "shipper"
)

// AddressValidationError indicates an address field required by the carrier
// is missing or malformed. Cause is set for the named party errors.
type AddressValidationError struct {
	Variant AddressVariant
	Field   string
	Country string
	Invalid bool
	Cause   error
}

func (e *AddressValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s address: %v", e.Variant, e.Cause)
	}
	if e.Invalid {
		return fmt.Sprintf("%s address: %s is invalid for %s", e.Variant, e.Field, e.Country)
	}
	if e.Country != "" {
		return fmt.Sprintf("%s address: %s is required for %s", e.Variant, e.Field, e.Country)
	}
	return fmt.Sprintf("%s address: %s is required", e.Variant, e.Field)
}

func (e *AddressValidationError) Unwrap() error {
	return e.Cause
}

// MissingWeightError indicates a physical product without a weight.
type MissingWeightError struct {
	Product string
}

func (e *MissingWeightError) Error() string {
	return fmt.Sprintf("weight is missing on product %q", e.Product)
}

// DuplicateLabelError indicates the shipment already carries a label.
type DuplicateLabelError struct {
	ShipmentID     string
	TrackingNumber string
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("shipment %s already has tracking number %s", e.ShipmentID, e.TrackingNumber)
}

// InvalidShipmentStateError indicates a label was requested for a shipment
// that is not packed or done.
type InvalidShipmentStateError struct {
	ShipmentID string
	State      string
}

func (e *InvalidShipmentStateError) Error() string {
	return fmt.Sprintf("shipment %s is %s, labels require a packed or done shipment", e.ShipmentID, e.State)
}

// MultiPackageUnsupportedError indicates the carrier answered with more
// package results than can be stored on one shipment.
type MultiPackageUnsupportedError struct {
	Count int
}

func (e *MultiPackageUnsupportedError) Error() string {
	return fmt.Sprintf("multi-package shipments are not supported (%d packages returned)", e.Count)
}

// Sentinel errors for common shipping scenarios.
var (
	// ErrPhoneRequired indicates the sending party has no phone number.
	ErrPhoneRequired = errors.New("phone number is missing")

	// ErrCompanyRequired indicates no company was given for the request.
	ErrCompanyRequired = errors.New("company is missing in context")

	// ErrServiceTypeRequired indicates a single-rate or confirm request
	// without a service code.
	ErrServiceTypeRequired = errors.New("service type is required")

	// ErrInvalidPackage indicates an unknown package type or a bad weight.
	ErrInvalidPackage = errors.New("invalid package")

	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")

	// ErrLabelInProgress indicates another label request holds the shipment.
	ErrLabelInProgress = errors.New("label generation already in progress")
)

// IsValidation reports whether err was detected locally, before any carrier
// request was sent.
func IsValidation(err error) bool {
	var (
		cfgErr    *ConfigurationIncompleteError
		addrErr   *AddressValidationError
		weightErr *MissingWeightError
		stateErr  *InvalidShipmentStateError
	)
	return errors.As(err, &cfgErr) ||
		errors.As(err, &addrErr) ||
		errors.As(err, &weightErr) ||
		errors.As(err, &stateErr) ||
		errors.Is(err, ErrServiceTypeRequired) ||
		errors.Is(err, ErrInvalidPackage)
}
