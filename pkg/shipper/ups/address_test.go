package ups_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/ups/pkg/shipper"
	"github.com/tournevent/ups/pkg/shipper/ups"
)

func TestShipTo_MissingCountryCheckedFirst(t *testing.T) {
	_, err := ups.ShipTo(shipper.Address{})

	var addrErr *shipper.AddressValidationError
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, "country", addrErr.Field)
}

func TestShipTo_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		addr    shipper.Address
		field   string
		country string
	}{
		{
			name:  "missing street",
			addr:  shipper.Address{City: "Miami", CountryCode: "US"},
			field: "street", country: "US",
		},
		{
			name:  "missing city",
			addr:  shipper.Address{Street: "1 Main St", CountryCode: "FR"},
			field: "city", country: "FR",
		},
		{
			name:  "US without subdivision",
			addr:  shipper.Address{Street: "1 Main St", City: "Miami", CountryCode: "US", PostalCode: "33101"},
			field: "subdivision", country: "US",
		},
		{
			name:  "US with blank subdivision",
			addr:  shipper.Address{Street: "1 Main St", City: "Miami", CountryCode: "US", SubdivisionCode: "  ", PostalCode: "33101"},
			field: "subdivision", country: "US",
		},
		{
			name:  "US without zip",
			addr:  shipper.Address{Street: "1 Main St", City: "Miami", CountryCode: "US", SubdivisionCode: "US-FL"},
			field: "zip", country: "US",
		},
		{
			name:  "CA without subdivision",
			addr:  shipper.Address{Street: "1 Bay St", City: "Toronto", CountryCode: "CA", PostalCode: "M5V 1A1"},
			field: "subdivision", country: "CA",
		},
		{
			name:  "PR without zip",
			addr:  shipper.Address{Street: "1 Calle Sol", City: "San Juan", CountryCode: "PR"},
			field: "zip", country: "PR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ups.ShipTo(tt.addr)

			var addrErr *shipper.AddressValidationError
			require.ErrorAs(t, err, &addrErr)
			assert.Equal(t, tt.field, addrErr.Field)
			assert.Equal(t, tt.country, addrErr.Country)
			assert.Equal(t, shipper.AddressShipTo, addrErr.Variant)
		})
	}
}

func TestShipTo_PuertoRicoWithoutSubdivision(t *testing.T) {
	loc, err := ups.ShipTo(shipper.Address{
		Street:      "1 Calle Sol",
		City:        "San Juan",
		CountryCode: "PR",
		PostalCode:  "00901",
		Party:       shipper.Party{Name: "Maria"},
	})

	require.NoError(t, err)
	assert.Empty(t, loc.Address.StateProvinceCode)
	assert.Equal(t, "00901", loc.Address.PostalCode)
}

func TestShipTo_CanadianPostalCodeFormat(t *testing.T) {
	addr := shipper.Address{
		Street:          "1 Bay St",
		City:            "Toronto",
		CountryCode:     "CA",
		SubdivisionCode: "CA-ON",
		PostalCode:      "12345",
	}

	_, err := ups.ShipTo(addr)

	var addrErr *shipper.AddressValidationError
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, "zip", addrErr.Field)
	assert.True(t, addrErr.Invalid)

	addr.PostalCode = "M5V 1A1"
	loc, err := ups.ShipTo(addr)
	require.NoError(t, err)
	assert.Equal(t, "ON", loc.Address.StateProvinceCode)

	addr.PostalCode = " k1a 0b1 "
	addr.SubdivisionCode = " CA-ON "
	loc, err = ups.ShipTo(addr)
	require.NoError(t, err)
	assert.Equal(t, "K1A 0B1", loc.Address.PostalCode)
	assert.Equal(t, "ON", loc.Address.StateProvinceCode)
}

func TestShipTo_Truncation(t *testing.T) {
	loc, err := ups.ShipTo(shipper.Address{
		Street:      strings.Repeat("s", 40),
		Street2:     strings.Repeat("b", 36),
		City:        strings.Repeat("c", 35),
		CountryCode: "de",
		PostalCode:  "10115",
	})

	require.NoError(t, err)
	assert.Len(t, loc.Address.AddressLine1, 35)
	assert.Len(t, loc.Address.AddressLine2, 35)
	assert.Len(t, loc.Address.City, 30)
	assert.Equal(t, "DE", loc.Address.CountryCode)
}

func TestShipTo_PartyFields(t *testing.T) {
	addr := shipper.Address{
		Street:          "1 Market St",
		City:            "San Francisco",
		CountryCode:     "US",
		SubdivisionCode: "US-CA",
		PostalCode:      "94105",
		Party: shipper.Party{
			Name:               "Acme Corp",
			Phone:              "415.555.0199",
			Email:              "dock@acme.example",
			TaxExemptionNumber: "EX-77",
		},
	}

	loc, err := ups.ShipTo(addr)

	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", loc.CompanyName)
	assert.Equal(t, "Acme Corp", loc.AttentionName)
	assert.Equal(t, "4155550199", loc.PhoneNumber)
	assert.Equal(t, "EX-77", loc.TaxIdentificationNumber)
	assert.Equal(t, "dock@acme.example", loc.EMailAddress)

	addr.Party.TaxID = "94-1111111"
	loc, err = ups.ShipTo(addr)
	require.NoError(t, err)
	assert.Equal(t, "94-1111111", loc.TaxIdentificationNumber)
}

func TestShipFrom_Success(t *testing.T) {
	addr := warehouseAddress()
	addr.Name = ""
	addr.Party.Fax = "(305) 555-0101"

	loc, err := ups.ShipFrom(addr, &shipper.Company{Name: "Openlabs Inc", TaxID: "12-3456789"})

	require.NoError(t, err)
	assert.Equal(t, "Openlabs Inc", loc.CompanyName)
	assert.Equal(t, "Openlabs Inc", loc.AttentionName)
	assert.Equal(t, "12-3456789", loc.TaxIdentificationNumber)
	assert.Equal(t, "13055550100", loc.PhoneNumber)
	assert.Equal(t, "3055550101", loc.FaxNumber)
	assert.Equal(t, "FL", loc.Address.StateProvinceCode)
}

func TestShipFrom_PhoneRequired(t *testing.T) {
	addr := warehouseAddress()
	addr.Party.Phone = "n/a"

	_, err := ups.ShipFrom(addr, &shipper.Company{Name: "Openlabs Inc"})

	require.ErrorIs(t, err, shipper.ErrPhoneRequired)
	assert.NotErrorIs(t, err, shipper.ErrCompanyRequired)
}

func TestShipFrom_CompanyRequired(t *testing.T) {
	_, err := ups.ShipFrom(warehouseAddress(), nil)

	require.ErrorIs(t, err, shipper.ErrCompanyRequired)
	assert.NotErrorIs(t, err, shipper.ErrPhoneRequired)

	var addrErr *shipper.AddressValidationError
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, shipper.AddressShipFrom, addrErr.Variant)
}

func TestShipperElement(t *testing.T) {
	el, err := ups.ShipperElement(warehouseAddress(), &shipper.Company{Name: "Openlabs Inc"}, "A1B2C3")

	require.NoError(t, err)
	assert.Equal(t, "Openlabs Inc", el.Name)
	assert.Equal(t, "Main Warehouse", el.AttentionName)
	assert.Equal(t, "A1B2C3", el.ShipperNumber)
	assert.Equal(t, "33101", el.Address.PostalCode)

	_, err = ups.ShipperElement(warehouseAddress(), nil, "A1B2C3")
	var addrErr *shipper.AddressValidationError
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, shipper.AddressShipper, addrErr.Variant)
}
