package shipper_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tournevent/ups/pkg/shipper"
)

func TestCarrierRequestError_Error(t *testing.T) {
	err := shipper.NewCarrierRequestError("ups", "rate", "Invalid postal code").WithCode("111210")
	assert.Equal(t, "ups rate request failed (111210): Invalid postal code", err.Error())

	err = shipper.NewCarrierRequestError("ups", "accept", "no package results returned")
	assert.Equal(t, "ups accept request failed: no package results returned", err.Error())
}

func TestCarrierRequestError_Unwrap(t *testing.T) {
	cause := errors.New("network timeout")
	err := shipper.NewCarrierRequestError("ups", "confirm", "network timeout").WithCause(cause)
	assert.True(t, errors.Is(err, cause))
}

func TestCarrierRequestError_Is(t *testing.T) {
	err1 := shipper.NewCarrierRequestError("ups", "rate", "Invalid postal code").WithCode("111210")
	err2 := shipper.NewCarrierRequestError("ups", "shop", "Different message").WithCode("111210")
	err3 := shipper.NewCarrierRequestError("ups", "rate", "Other").WithCode("250003")

	assert.True(t, errors.Is(err1, err2), "same code should match")
	assert.False(t, errors.Is(err1, err3), "different codes should not match")
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", err1), &shipper.CarrierRequestError{}))
}

func TestCarrierRequestError_WithStatusCode(t *testing.T) {
	err := shipper.NewCarrierRequestError("ups", "rate", "Unauthorized").WithStatusCode(401)
	assert.Equal(t, 401, err.StatusCode)
}

func TestAddressValidationError_Error(t *testing.T) {
	err := &shipper.AddressValidationError{Variant: shipper.AddressShipTo, Field: "subdivision", Country: "US"}
	assert.Equal(t, "ship-to address: subdivision is required for US", err.Error())

	err = &shipper.AddressValidationError{Variant: shipper.AddressShipTo, Field: "country"}
	assert.Equal(t, "ship-to address: country is required", err.Error())

	err = &shipper.AddressValidationError{Variant: shipper.AddressShipTo, Field: "zip", Country: "CA", Invalid: true}
	assert.Equal(t, "ship-to address: zip is invalid for CA", err.Error())
}

func TestAddressValidationError_NamedCauses(t *testing.T) {
	phone := &shipper.AddressValidationError{Variant: shipper.AddressShipFrom, Field: "phone", Cause: shipper.ErrPhoneRequired}
	company := &shipper.AddressValidationError{Variant: shipper.AddressShipFrom, Field: "company", Cause: shipper.ErrCompanyRequired}

	assert.ErrorIs(t, phone, shipper.ErrPhoneRequired)
	assert.NotErrorIs(t, phone, shipper.ErrCompanyRequired)
	assert.ErrorIs(t, company, shipper.ErrCompanyRequired)
	assert.Equal(t, "ship-from address: phone number is missing", phone.Error())
}

func TestConfigurationIncompleteError_Error(t *testing.T) {
	err := &shipper.ConfigurationIncompleteError{Carrier: "ups", Missing: []string{"LicenseKey", "Password"}}
	assert.Equal(t, "ups settings are incomplete: LicenseKey, Password", err.Error())
}

func TestIsValidation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"configuration", &shipper.ConfigurationIncompleteError{Carrier: "ups"}, true},
		{"address", &shipper.AddressValidationError{Field: "city"}, true},
		{"weight", fmt.Errorf("aggregate: %w", &shipper.MissingWeightError{Product: "Chair"}), true},
		{"state", &shipper.InvalidShipmentStateError{ShipmentID: "1", State: "draft"}, true},
		{"service", shipper.ErrServiceTypeRequired, true},
		{"package", shipper.ErrInvalidPackage, true},
		{"carrier", shipper.NewCarrierRequestError("ups", "rate", "boom"), false},
		{"duplicate", &shipper.DuplicateLabelError{ShipmentID: "1", TrackingNumber: "1Z"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shipper.IsValidation(tt.err))
		})
	}
}
