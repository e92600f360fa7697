package ups

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/tournevent/ups/pkg/shipper"
)

// Units of measure systems understood by UPS.
const (
	UOMMetric  = "00"
	UOMEnglish = "01"
)

// Config holds UPS configuration.
type Config struct {
	LicenseKey      string `validate:"required"`
	UserID          string `validate:"required"`
	Password        string `validate:"required"`
	ShipperNumber   string `validate:"required"`
	UOMSystem       string `validate:"omitempty,oneof=00 01"`
	Sandbox         bool
	NegotiatedRates bool
	// ProductCode prefixes the display name of shopped rates.
	ProductCode string
	BaseURL     string
	Services    ServiceTable
	UseMock     bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every missing or invalid setting.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return &shipper.ConfigurationIncompleteError{Carrier: carrierName, Missing: missing}
}

func (c Config) metric() bool {
	return c.UOMSystem == UOMMetric
}

// WeightUnit returns the symbol of the weight unit of the configured system.
func (c Config) WeightUnit() string {
	if c.metric() {
		return "kg"
	}
	return "lb"
}

// WeightCode returns the UPS code of the weight unit.
func (c Config) WeightCode() string {
	if c.metric() {
		return "KGS"
	}
	return "LBS"
}

// LengthCode returns the UPS code of the length unit.
func (c Config) LengthCode() string {
	if c.metric() {
		return "CM"
	}
	return "IN"
}

func (c Config) productCode() string {
	if c.ProductCode == "" {
		return "UPS"
	}
	return c.ProductCode
}

func (c Config) services() ServiceTable {
	if c.Services == nil {
		return DefaultServices()
	}
	return c.Services
}
