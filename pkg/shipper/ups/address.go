package ups

import (
	"regexp"
	"strings"

	"github.com/tournevent/ups/pkg/shipper"
)

const (
	maxStreetLength = 35
	maxCityLength   = 30
)

var (
	nonDigits        = regexp.MustCompile(`\D+`)
	canadianPostcode = regexp.MustCompile(`^[A-Za-z]\d[A-Za-z] ?\d[A-Za-z]\d$`)

	subdivisionRequired = map[string]bool{"US": true, "CA": true}
	postalCodeRequired  = map[string]bool{"US": true, "CA": true, "PR": true}
)

// ShipFrom builds the ShipFrom element from the warehouse address.
func ShipFrom(addr shipper.Address, company *shipper.Company) (Location, error) {
	return origin(addr, company, shipper.AddressShipFrom)
}

// ShipTo builds the ShipTo element from the delivery address. No phone is
// required for the receiving party.
func ShipTo(addr shipper.Address) (Location, error) {
	a, err := normalizeAddress(addr, shipper.AddressShipTo)
	if err != nil {
		return Location{}, err
	}

	name := contactName(addr)
	taxID := addr.Party.TaxID
	if taxID == "" {
		taxID = addr.Party.TaxExemptionNumber
	}
	return Location{
		CompanyName:             name,
		AttentionName:           name,
		TaxIdentificationNumber: taxID,
		PhoneNumber:             digits(addr.Party.Phone),
		FaxNumber:               digits(addr.Party.Fax),
		EMailAddress:            addr.Party.Email,
		Address:                 a,
	}, nil
}

// ShipperElement builds the Shipper element: the ship-from data of the
// warehouse plus the billed account number.
func ShipperElement(addr shipper.Address, company *shipper.Company, shipperNumber string) (Shipper, error) {
	loc, err := origin(addr, company, shipper.AddressShipper)
	if err != nil {
		return Shipper{}, err
	}
	return Shipper{
		Name:                    loc.CompanyName,
		AttentionName:           loc.AttentionName,
		TaxIdentificationNumber: loc.TaxIdentificationNumber,
		PhoneNumber:             loc.PhoneNumber,
		FaxNumber:               loc.FaxNumber,
		EMailAddress:            loc.EMailAddress,
		ShipperNumber:           shipperNumber,
		Address:                 loc.Address,
	}, nil
}

func origin(addr shipper.Address, company *shipper.Company, variant shipper.AddressVariant) (Location, error) {
	a, err := normalizeAddress(addr, variant)
	if err != nil {
		return Location{}, err
	}

	phone := digits(addr.Party.Phone)
	if phone == "" {
		return Location{}, &shipper.AddressValidationError{Variant: variant, Field: "phone", Cause: shipper.ErrPhoneRequired}
	}
	if company == nil || company.Name == "" {
		return Location{}, &shipper.AddressValidationError{Variant: variant, Field: "company", Cause: shipper.ErrCompanyRequired}
	}

	return Location{
		CompanyName:             company.Name,
		AttentionName:           contactName(addr),
		TaxIdentificationNumber: company.TaxID,
		PhoneNumber:             phone,
		FaxNumber:               digits(addr.Party.Fax),
		EMailAddress:            addr.Party.Email,
		Address:                 a,
	}, nil
}

// normalizeAddress applies the checks shared by every variant. The country
// is checked before anything else.
func normalizeAddress(addr shipper.Address, variant shipper.AddressVariant) (Address, error) {
	country := strings.ToUpper(strings.TrimSpace(addr.CountryCode))
	missing := func(field string) error {
		return &shipper.AddressValidationError{Variant: variant, Field: field, Country: country}
	}

	switch {
	case country == "":
		return Address{}, missing("country")
	case strings.TrimSpace(addr.Street) == "":
		return Address{}, missing("street")
	case strings.TrimSpace(addr.City) == "":
		return Address{}, missing("city")
	case subdivisionRequired[country] && strings.TrimSpace(addr.SubdivisionCode) == "":
		return Address{}, missing("subdivision")
	case postalCodeRequired[country] && strings.TrimSpace(addr.PostalCode) == "":
		return Address{}, missing("zip")
	}

	postal := strings.TrimSpace(addr.PostalCode)
	if country == "CA" {
		postal = strings.ToUpper(postal)
		if !canadianPostcode.MatchString(postal) {
			return Address{}, &shipper.AddressValidationError{Variant: variant, Field: "zip", Country: country, Invalid: true}
		}
	}

	return Address{
		AddressLine1:      truncate(strings.TrimSpace(addr.Street), maxStreetLength),
		AddressLine2:      truncate(strings.TrimSpace(addr.Street2), maxStreetLength),
		City:              truncate(strings.TrimSpace(addr.City), maxCityLength),
		StateProvinceCode: stateCode(addr.SubdivisionCode),
		PostalCode:        postal,
		CountryCode:       country,
	}, nil
}

// stateCode strips the "XX-" country prefix of an ISO 3166-2 code.
func stateCode(subdivision string) string {
	subdivision = strings.TrimSpace(subdivision)
	if len(subdivision) > 3 && subdivision[2] == '-' {
		return subdivision[3:]
	}
	return subdivision
}

func contactName(addr shipper.Address) string {
	if addr.Name != "" {
		return addr.Name
	}
	return addr.Party.Name
}

func digits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
