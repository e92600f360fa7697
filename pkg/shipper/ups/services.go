package ups

import (
	"fmt"
	"sort"

	"github.com/tournevent/ups/pkg/shipper"
)

// DefaultPackageType is the customer supplied package.
const DefaultPackageType = "02"

var packageTypes = map[string]string{
	"01": "UPS Letter",
	"02": "Customer Supplied Package",
	"03": "Tube",
	"04": "PAK",
	"21": "UPS Express Box",
	"24": "UPS 25KG Box",
	"25": "UPS 10KG Box",
	"30": "Pallet",
	"2a": "Small Express Box",
	"2b": "Medium Express Box",
	"2c": "Large Express Box",
}

// PackageTypeName returns the name of a UPS packaging type code.
func PackageTypeName(code string) (string, error) {
	name, ok := packageTypes[code]
	if !ok {
		return "", fmt.Errorf("%w: unknown UPS package type %q", shipper.ErrInvalidPackage, code)
	}
	return name, nil
}

// PackageTypes returns the known packaging type codes in order.
func PackageTypes() []string {
	codes := make([]string, 0, len(packageTypes))
	for code := range packageTypes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ServiceTable maps UPS service codes to their names. Shopped rates for
// codes missing from the table are dropped.
type ServiceTable map[string]string

// Name returns the name of a service code.
func (t ServiceTable) Name(code string) (string, bool) {
	name, ok := t[code]
	return name, ok
}

// Codes returns the service codes in order.
func (t ServiceTable) Codes() []string {
	codes := make([]string, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// DefaultServices returns the standard UPS services.
func DefaultServices() ServiceTable {
	return ServiceTable{
		"01": "Next Day Air",
		"02": "2nd Day Air",
		"03": "Ground",
		"07": "Worldwide Express",
		"08": "Worldwide Expedited",
		"11": "Standard",
		"12": "3 Day Select",
		"13": "Next Day Air Saver",
		"14": "Next Day Air Early A.M.",
		"54": "Worldwide Express Plus",
		"59": "2nd Day Air A.M.",
		"65": "Saver",
	}
}
