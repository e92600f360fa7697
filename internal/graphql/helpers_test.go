package graphql

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/ups/internal/shipping"
	"github.com/tournevent/ups/internal/store"
	"github.com/tournevent/ups/pkg/shipper"
	"github.com/tournevent/ups/pkg/shipper/weight"
	"github.com/tournevent/ups/internal/graphql/generated"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

func str(s string) *string {
	return &s
}

func TestAddressInputToModel(t *testing.T) {
	input := &generated.AddressInput{
		Name:            str("Dock 4"),
		Street:          str("100 Dock Rd"),
		Street2:         str("Suite 9"),
		City:            str("Miami"),
		CountryCode:     str("US"),
		SubdivisionCode: str("US-FL"),
		PostalCode:      str("33101"),
		Party: &generated.PartyInput{
			Name:               "Openlabs Inc",
			Phone:              str("305-555-0100"),
			Email:              str("ship@openlabs.example"),
			TaxExemptionNumber: str("EX-1"),
		},
	}

	addr := addressInputToModel(input)

	assert.Equal(t, "Dock 4", addr.Name)
	assert.Equal(t, "Suite 9", addr.Street2)
	assert.Equal(t, "US-FL", addr.SubdivisionCode)
	assert.Equal(t, "Openlabs Inc", addr.Party.Name)
	assert.Equal(t, "305-555-0100", addr.Party.Phone)
	assert.Equal(t, "EX-1", addr.Party.TaxExemptionNumber)
	assert.Empty(t, addr.Party.Fax)
}

func TestAddressInputToModel_Nil(t *testing.T) {
	assert.Equal(t, shipper.Address{}, addressInputToModel(nil))
}

func TestCompanyInputToModel(t *testing.T) {
	assert.Nil(t, companyInputToModel(nil))
	assert.Equal(t, &shipper.Company{Name: "Openlabs Inc", TaxID: "12-3456789"},
		companyInputToModel(&generated.CompanyInput{Name: "Openlabs Inc", TaxID: str("12-3456789")}))
}

func TestOrderInputToModel(t *testing.T) {
	input := generated.OrderInput{
		ID:               "SO-1",
		Carrier:          str("ups"),
		SaturdayDelivery: func() *bool { b := true; return &b }(),
		Lines: []*generated.LineInput{
			{
				Product: &generated.ProductInput{
					Name:        "Mug",
					Type:        generated.ProductTypeGoods,
					Weight:      str("250"),
					WeightUnit:  str("g"),
					DefaultUnit: str("u"),
				},
				Quantity: "2",
				Unit:     str("dozen"),
			},
			{
				Product:  &generated.ProductInput{Name: "Installation", Type: generated.ProductTypeService},
				Quantity: "1",
			},
		},
	}

	order, err := orderInputToModel(input)
	require.NoError(t, err)

	assert.Equal(t, "ups", order.Carrier)
	assert.True(t, order.SaturdayDelivery)
	require.Len(t, order.Lines, 2)

	mug := order.Lines[0]
	assert.Equal(t, weight.ProductGoods, mug.Product.Type)
	assert.Equal(t, weight.G, mug.Product.WeightUnit)
	assert.Equal(t, weight.Dozen, mug.Unit)
	assert.True(t, decimal.NewFromInt(250).Equal(*mug.Product.Weight))
	assert.Equal(t, weight.ProductService, order.Lines[1].Product.Type)
	assert.Nil(t, order.Lines[1].Product.Weight)

	total, err := weight.Aggregate(order.Lines, weight.KG)
	require.NoError(t, err)
	assert.Equal(t, "6", total.String())
}

func TestOrderInputToModel_Errors(t *testing.T) {
	tests := []struct {
		name  string
		line  *generated.LineInput
		field string
	}{
		{
			name:  "bad quantity",
			line:  &generated.LineInput{Product: &generated.ProductInput{Name: "Mug"}, Quantity: "two"},
			field: "lines[0].quantity",
		},
		{
			name:  "bad weight",
			line:  &generated.LineInput{Product: &generated.ProductInput{Name: "Mug", Weight: str("heavy"), WeightUnit: str("kg")}, Quantity: "1"},
			field: "lines[0].product.weight",
		},
		{
			name:  "weight without unit",
			line:  &generated.LineInput{Product: &generated.ProductInput{Name: "Mug", Weight: str("1")}, Quantity: "1"},
			field: "lines[0].product.weightUnit",
		},
		{
			name:  "unknown unit",
			line:  &generated.LineInput{Product: &generated.ProductInput{Name: "Mug"}, Quantity: "1", Unit: str("crate")},
			field: "lines[0].unit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := orderInputToModel(generated.OrderInput{ID: "SO-1", Lines: []*generated.LineInput{tt.line}})

			var inErr *inputError
			require.ErrorAs(t, err, &inErr)
			assert.Equal(t, tt.field, inErr.field)
			assert.Equal(t, CodeBadUserInput, errorCode(err))
		})
	}
}

func TestShipmentInputToModel(t *testing.T) {
	shipment, err := shipmentInputToModel(generated.ShipmentInput{
		ID:             "SHIP-1",
		State:          generated.ShipmentStatePacked,
		Carrier:        "ups",
		TrackingNumber: str("1Z999"),
	})
	require.NoError(t, err)

	assert.Equal(t, shipping.StatePacked, shipment.State)
	assert.Equal(t, "1Z999", shipment.TrackingNumber)
	assert.Empty(t, shipment.Moves)
}

func TestMoneyToGraphQL(t *testing.T) {
	assert.Equal(t, &generated.Money{Amount: "12.50", Currency: "USD"},
		moneyToGraphQL(shipper.RoundMoney(decimal.RequireFromString("12.5"), "USD")))
	assert.Equal(t, &generated.Money{Amount: "1250", Currency: "JPY"},
		moneyToGraphQL(shipper.RoundMoney(decimal.RequireFromString("1250"), "JPY")))
}

func TestRateToGraphQL(t *testing.T) {
	days := 2
	rate := rateToGraphQL(shipper.RateQuote{
		Carrier:     "ups",
		ServiceCode: "02",
		DisplayName: "UPS 2nd Day Air",
		Cost:        shipper.RoundMoney(decimal.RequireFromString("32.10"), "USD"),
		Metadata:    shipper.RateMetadata{GuaranteedDaysToDelivery: &days},
	})

	assert.Equal(t, "32.10", rate.Cost.Amount)
	assert.Nil(t, rate.ScheduledDeliveryTime)
	require.NotNil(t, rate.GuaranteedDaysToDelivery)
	assert.Equal(t, 2, *rate.GuaranteedDaysToDelivery)
}

func TestLabelToGraphQL(t *testing.T) {
	assert.Nil(t, labelToGraphQL(nil, nil))

	label := labelToGraphQL(&store.LabelRecord{
		ShipmentID:     "SHIP-1",
		TrackingNumber: "1Z999",
		Cost:           decimal.RequireFromString("12.5"),
		Currency:       "USD",
	}, []store.Attachment{{ID: "a1", Name: "1Z999_1Z999AA1_.gif", Data: []byte("GIF89a")}})

	assert.Equal(t, "12.50", label.Cost.Amount)
	require.Len(t, label.Attachments, 1)
	assert.Equal(t, 6, label.Attachments[0].Size)
	assert.Equal(t, "R0lGODlh", label.Attachments[0].Data)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{&shipper.ConfigurationIncompleteError{Carrier: "ups", Missing: []string{"LicenseKey"}}, CodeConfigurationIncomplete},
		{&shipper.AddressValidationError{Variant: shipper.AddressShipTo, Field: "zip", Country: "US"}, CodeAddressInvalid},
		{&shipper.MissingWeightError{Product: "Mug"}, CodeMissingWeight},
		{shipper.ErrServiceTypeRequired, CodeServiceTypeRequired},
		{fmt.Errorf("%w: bad type", shipper.ErrInvalidPackage), CodeInvalidPackage},
		{fmt.Errorf("carrier dhl: %w", shipper.ErrCarrierNotFound), CodeCarrierNotFound},
		{shipper.NewCarrierRequestError("ups", "rate", "Invalid Access License number").WithCode("250003"), CodeCarrierError},
		{&shipper.DuplicateLabelError{ShipmentID: "SHIP-1", TrackingNumber: "1Z"}, CodeDuplicateLabel},
		{&shipper.InvalidShipmentStateError{ShipmentID: "SHIP-1", State: "draft"}, CodeInvalidShipmentState},
		{&shipper.MultiPackageUnsupportedError{Count: 2}, CodeMultiPackageUnsupported},
		{fmt.Errorf("shipment SHIP-1: %w", shipper.ErrLabelInProgress), CodeLabelInProgress},
		{weight.ErrIncompatibleUnits, CodeBadUserInput},
		{errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, errorCode(tt.err))
		})
	}
}

func TestErrorPresenter(t *testing.T) {
	err := shipper.NewCarrierRequestError("ups", "confirm", "Missing or invalid shipper number").WithCode("120100")
	path := ast.Path{ast.PathName("generateShippingLabel")}

	gqlErr := ErrorPresenter(context.Background(), gqlerror.WrapPath(path, err))

	assert.Equal(t, err.Error(), gqlErr.Message)
	assert.Equal(t, CodeCarrierError, gqlErr.Extensions["code"])
	assert.Equal(t, "ups", gqlErr.Extensions["carrier"])
	assert.Equal(t, "120100", gqlErr.Extensions["carrierCode"])
	assert.Equal(t, path, gqlErr.Path)
}

func TestErrorPresenter_PlainError(t *testing.T) {
	gqlErr := ErrorPresenter(context.Background(), fmt.Errorf("carrier dhl: %w", shipper.ErrCarrierNotFound))

	assert.Equal(t, CodeCarrierNotFound, gqlErr.Extensions["code"])
	assert.NotContains(t, gqlErr.Extensions, "carrier")
}

func TestErrorPresenter_KeepsSchemaErrors(t *testing.T) {
	gqlErr := ErrorPresenter(context.Background(), gqlerror.Errorf("must not be null"))

	assert.Equal(t, "must not be null", gqlErr.Message)
	assert.Empty(t, gqlErr.Extensions)
}
