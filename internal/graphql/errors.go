package graphql

import (
	"context"
	"errors"

	gqlgen "github.com/99designs/gqlgen/graphql"
	"github.com/tournevent/ups/pkg/shipper"
	"github.com/tournevent/ups/pkg/shipper/weight"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Error codes reported in the "code" extension.
const (
	CodeBadUserInput            = "BAD_USER_INPUT"
	CodeConfigurationIncomplete = "CONFIGURATION_INCOMPLETE"
	CodeAddressInvalid          = "ADDRESS_INVALID"
	CodeMissingWeight           = "MISSING_WEIGHT"
	CodeServiceTypeRequired     = "SERVICE_TYPE_REQUIRED"
	CodeInvalidPackage          = "INVALID_PACKAGE"
	CodeCarrierNotFound         = "CARRIER_NOT_FOUND"
	CodeCarrierError            = "CARRIER_ERROR"
	CodeDuplicateLabel          = "DUPLICATE_LABEL"
	CodeInvalidShipmentState    = "INVALID_SHIPMENT_STATE"
	CodeMultiPackageUnsupported = "MULTI_PACKAGE_UNSUPPORTED"
	CodeLabelInProgress         = "LABEL_IN_PROGRESS"
	CodeInternal                = "INTERNAL_SERVER_ERROR"
)

func errorCode(err error) string {
	var (
		inErr    *inputError
		cfgErr   *shipper.ConfigurationIncompleteError
		addrErr  *shipper.AddressValidationError
		wErr     *shipper.MissingWeightError
		reqErr   *shipper.CarrierRequestError
		dupErr   *shipper.DuplicateLabelError
		stateErr *shipper.InvalidShipmentStateError
		multiErr *shipper.MultiPackageUnsupportedError
	)
	switch {
	case errors.As(err, &inErr),
		errors.Is(err, weight.ErrUnknownUnit),
		errors.Is(err, weight.ErrIncompatibleUnits):
		return CodeBadUserInput
	case errors.As(err, &cfgErr):
		return CodeConfigurationIncomplete
	case errors.As(err, &addrErr):
		return CodeAddressInvalid
	case errors.As(err, &wErr):
		return CodeMissingWeight
	case errors.Is(err, shipper.ErrServiceTypeRequired):
		return CodeServiceTypeRequired
	case errors.Is(err, shipper.ErrInvalidPackage):
		return CodeInvalidPackage
	case errors.Is(err, shipper.ErrCarrierNotFound):
		return CodeCarrierNotFound
	case errors.As(err, &dupErr):
		return CodeDuplicateLabel
	case errors.As(err, &stateErr):
		return CodeInvalidShipmentState
	case errors.As(err, &multiErr):
		return CodeMultiPackageUnsupported
	case errors.Is(err, shipper.ErrLabelInProgress):
		return CodeLabelInProgress
	case errors.As(err, &reqErr):
		return CodeCarrierError
	default:
		return CodeInternal
	}
}

// ErrorPresenter adds a "code" extension to resolver errors. Carrier
// failures also carry the carrier and its own error code.
func ErrorPresenter(ctx context.Context, err error) *gqlerror.Error {
	gqlErr := gqlgen.DefaultErrorPresenter(ctx, err)
	if gqlErr.Err == nil {
		return gqlErr
	}

	if gqlErr.Extensions == nil {
		gqlErr.Extensions = map[string]interface{}{}
	}
	if _, ok := gqlErr.Extensions["code"]; !ok {
		gqlErr.Extensions["code"] = errorCode(gqlErr.Err)
	}

	var reqErr *shipper.CarrierRequestError
	if errors.As(gqlErr.Err, &reqErr) {
		gqlErr.Extensions["carrier"] = reqErr.Carrier
		if reqErr.Code != "" {
			gqlErr.Extensions["carrierCode"] = reqErr.Code
		}
	}
	return gqlErr
}
