package ups_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/ups/pkg/shipper"
	"github.com/tournevent/ups/pkg/shipper/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func testConfig() ups.Config {
	return ups.Config{
		LicenseKey:    "license",
		UserID:        "user",
		Password:      "secret",
		ShipperNumber: "A1B2C3",
		UOMSystem:     ups.UOMEnglish,
	}
}

func newTestClient(cfg ups.Config, mockClient *ups.MockAPIClient) *ups.Client {
	logger := otelzap.New(zap.NewNop())
	return ups.NewWithAPIClient(cfg, mockClient, logger, nil)
}

func warehouseAddress() shipper.Address {
	return shipper.Address{
		Name:            "Main Warehouse",
		Street:          "100 Dock Rd",
		City:            "Miami",
		CountryCode:     "US",
		SubdivisionCode: "US-FL",
		PostalCode:      "33101",
		Party: shipper.Party{
			Name:  "Openlabs Inc",
			Phone: "+1 (305) 555-0100",
			Email: "ship@openlabs.example",
		},
	}
}

func testRequest() *shipper.ShippingRequest {
	warehouse := warehouseAddress()
	return &shipper.ShippingRequest{
		Company:  &shipper.Company{Name: "Openlabs Inc", TaxID: "12-3456789"},
		Shipper:  warehouse,
		ShipFrom: warehouse,
		ShipTo: shipper.Address{
			Name:            "John Doe",
			Street:          "1 Market St",
			City:            "San Francisco",
			CountryCode:     "US",
			SubdivisionCode: "US-CA",
			PostalCode:      "94105",
			Party:           shipper.Party{Name: "John Doe", TaxExemptionNumber: "EX-1"},
		},
		Packages: []shipper.Package{
			{TypeCode: "02", Weight: decimal.NewFromInt(3), WeightUnit: "lb"},
		},
		ServiceCode: "03",
	}
}

func TestClient_Name(t *testing.T) {
	client := newTestClient(testConfig(), ups.NewMockAPIClient())
	assert.Equal(t, "ups", client.Name())
	assert.Equal(t, "lb", client.WeightUnit())
}

func TestClient_Rate_Success(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client := newTestClient(testConfig(), mockAPI)

	quote, err := client.Rate(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, "ups", quote.Carrier)
	assert.Equal(t, "03", quote.ServiceCode)
	assert.Equal(t, "UPS Ground", quote.DisplayName)
	assert.Equal(t, "15.5", quote.Cost.Amount.String())
	assert.Equal(t, "USD", quote.Cost.Currency)

	reqs := mockAPI.RateRequests()
	require.Len(t, reqs, 1)
	sent := reqs[0]
	assert.Equal(t, "Rate", sent.Request.RequestOption)
	require.NotNil(t, sent.Shipment.Service)
	assert.Equal(t, "03", sent.Shipment.Service.Code)
	assert.Nil(t, sent.Shipment.RateInformation)

	require.Len(t, sent.Shipment.Packages, 1)
	pkg := sent.Shipment.Packages[0]
	assert.Equal(t, "02", pkg.PackagingType.Code)
	assert.Equal(t, "LBS", pkg.PackageWeight.UnitOfMeasurement.Code)
	assert.Equal(t, "3", pkg.PackageWeight.Weight)
	assert.Equal(t, "0", pkg.PackageServiceOptions.InsuredValue.MonetaryValue)

	assert.Equal(t, "A1B2C3", sent.Shipment.Shipper.ShipperNumber)
	assert.Equal(t, "Openlabs Inc", sent.Shipment.Shipper.Name)
	assert.Equal(t, "13055550100", sent.Shipment.ShipFrom.PhoneNumber)
	assert.Equal(t, "FL", sent.Shipment.ShipFrom.Address.StateProvinceCode)
	assert.Equal(t, "CA", sent.Shipment.ShipTo.Address.StateProvinceCode)
}

func TestClient_Rate_ServiceTypeRequired(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client := newTestClient(testConfig(), mockAPI)

	req := testRequest()
	req.ServiceCode = ""

	_, err := client.Rate(context.Background(), req)

	require.ErrorIs(t, err, shipper.ErrServiceTypeRequired)
	assert.Equal(t, 0, mockAPI.Calls())
}

func TestClient_Rate_IncompleteConfiguration(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	cfg := testConfig()
	cfg.Password = ""
	cfg.ShipperNumber = ""
	client := newTestClient(cfg, mockAPI)

	_, err := client.Rate(context.Background(), testRequest())

	var cfgErr *shipper.ConfigurationIncompleteError
	require.ErrorAs(t, err, &cfgErr)
	assert.ElementsMatch(t, []string{"Password", "ShipperNumber"}, cfgErr.Missing)
	assert.Equal(t, 0, mockAPI.Calls())
}

func TestClient_Rate_InvalidUOMSystem(t *testing.T) {
	cfg := testConfig()
	cfg.UOMSystem = "02"
	client := newTestClient(cfg, ups.NewMockAPIClient())

	_, err := client.Rate(context.Background(), testRequest())

	var cfgErr *shipper.ConfigurationIncompleteError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"UOMSystem"}, cfgErr.Missing)
}

func TestClient_Rate_AddressErrorBeforeRequest(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client := newTestClient(testConfig(), mockAPI)

	req := testRequest()
	req.ShipTo.CountryCode = ""

	_, err := client.Rate(context.Background(), req)

	var addrErr *shipper.AddressValidationError
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, "country", addrErr.Field)
	assert.Equal(t, shipper.AddressShipTo, addrErr.Variant)
	assert.Equal(t, 0, mockAPI.Calls())
}

func TestClient_Rate_APIError(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(testConfig(), mockAPI)

	_, err := client.Rate(context.Background(), testRequest())

	var reqErr *shipper.CarrierRequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Simulated API error", reqErr.Message)
	assert.Equal(t, "MOCK_ERROR", reqErr.Code)
	assert.ErrorIs(t, err, &shipper.CarrierRequestError{})
}

func TestClient_Rate_PrefersNegotiatedRates(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, req *ups.RatingRequest) (*ups.RatingResponse, error) {
		return &ups.RatingResponse{
			RatedShipments: []ups.RatedShipment{
				{
					Service:      ups.CodeDescription{Code: "03"},
					TotalCharges: ups.MonetaryAmount{CurrencyCode: "USD", MonetaryValue: "20.00"},
					NegotiatedRates: &ups.NegotiatedRates{
						NetSummaryCharges: ups.NetSummaryCharges{
							GrandTotal: ups.MonetaryAmount{CurrencyCode: "USD", MonetaryValue: "17.456"},
						},
					},
				},
			},
		}, nil
	}
	cfg := testConfig()
	cfg.NegotiatedRates = true
	client := newTestClient(cfg, mockAPI)

	quote, err := client.Rate(context.Background(), testRequest())

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("17.46").Equal(quote.Cost.Amount), "got %s", quote.Cost.Amount)

	sent := mockAPI.RateRequests()[0]
	require.NotNil(t, sent.Shipment.RateInformation)
	assert.NotNil(t, sent.Shipment.RateInformation.NegotiatedRatesIndicator)
}

func TestClient_Rate_NegotiatedIgnoredWhenDisabled(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, req *ups.RatingRequest) (*ups.RatingResponse, error) {
		return &ups.RatingResponse{
			RatedShipments: []ups.RatedShipment{
				{
					Service:      ups.CodeDescription{Code: "03"},
					TotalCharges: ups.MonetaryAmount{CurrencyCode: "USD", MonetaryValue: "20.00"},
					NegotiatedRates: &ups.NegotiatedRates{
						NetSummaryCharges: ups.NetSummaryCharges{
							GrandTotal: ups.MonetaryAmount{CurrencyCode: "USD", MonetaryValue: "17.45"},
						},
					},
				},
			},
		}, nil
	}
	client := newTestClient(testConfig(), mockAPI)

	quote, err := client.Rate(context.Background(), testRequest())

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20).Equal(quote.Cost.Amount))
}

func TestClient_Rate_RoundsToCurrencyPrecision(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, req *ups.RatingRequest) (*ups.RatingResponse, error) {
		return &ups.RatingResponse{
			RatedShipments: []ups.RatedShipment{
				{
					Service:      ups.CodeDescription{Code: "07"},
					TotalCharges: ups.MonetaryAmount{CurrencyCode: "JPY", MonetaryValue: "1234.6"},
				},
			},
		}, nil
	}
	client := newTestClient(testConfig(), mockAPI)

	req := testRequest()
	req.ServiceCode = "07"
	quote, err := client.Rate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "JPY", quote.Cost.Currency)
	assert.True(t, decimal.NewFromInt(1235).Equal(quote.Cost.Amount), "got %s", quote.Cost.Amount)
}

func TestClient_Shop_DropsUnknownServices(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, req *ups.RatingRequest) (*ups.RatingResponse, error) {
		return &ups.RatingResponse{
			RatedShipments: []ups.RatedShipment{
				{
					Service:                  ups.CodeDescription{Code: "03"},
					TotalCharges:             ups.MonetaryAmount{CurrencyCode: "USD", MonetaryValue: "12.50"},
					GuaranteedDaysToDelivery: "3",
					ScheduledDeliveryTime:    "10:30 A.M.",
				},
				{
					Service:      ups.CodeDescription{Code: "99"},
					TotalCharges: ups.MonetaryAmount{CurrencyCode: "USD", MonetaryValue: "9.99"},
				},
			},
		}, nil
	}
	client := newTestClient(testConfig(), mockAPI)

	req := testRequest()
	req.ServiceCode = ""
	quotes, err := client.Shop(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "03", quotes[0].ServiceCode)
	assert.Equal(t, "UPS Ground", quotes[0].DisplayName)
	assert.Equal(t, "10:30 A.M.", quotes[0].Metadata.ScheduledDeliveryTime)
	require.NotNil(t, quotes[0].Metadata.GuaranteedDaysToDelivery)
	assert.Equal(t, 3, *quotes[0].Metadata.GuaranteedDaysToDelivery)

	sent := mockAPI.RateRequests()[0]
	assert.Equal(t, "Shop", sent.Request.RequestOption)
	assert.Nil(t, sent.Shipment.Service)
}

func TestClient_Shop_NegotiatedPerItem(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, req *ups.RatingRequest) (*ups.RatingResponse, error) {
		return &ups.RatingResponse{
			RatedShipments: []ups.RatedShipment{
				{
					Service:      ups.CodeDescription{Code: "03"},
					TotalCharges: ups.MonetaryAmount{CurrencyCode: "USD", MonetaryValue: "12.50"},
					NegotiatedRates: &ups.NegotiatedRates{
						NetSummaryCharges: ups.NetSummaryCharges{
							GrandTotal: ups.MonetaryAmount{CurrencyCode: "USD", MonetaryValue: "10.00"},
						},
					},
				},
				{
					Service:      ups.CodeDescription{Code: "01"},
					TotalCharges: ups.MonetaryAmount{CurrencyCode: "USD", MonetaryValue: "40.00"},
				},
			},
		}, nil
	}
	cfg := testConfig()
	cfg.NegotiatedRates = true
	client := newTestClient(cfg, mockAPI)

	quotes, err := client.Shop(context.Background(), testRequest())

	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.True(t, decimal.NewFromInt(10).Equal(quotes[0].Cost.Amount))
	assert.True(t, decimal.NewFromInt(40).Equal(quotes[1].Cost.Amount))
}

func TestClient_Shop_CustomServiceTable(t *testing.T) {
	cfg := testConfig()
	cfg.Services = ups.ServiceTable{"03": "Ground"}
	cfg.ProductCode = "UPSX"
	client := newTestClient(cfg, ups.NewMockAPIClient())

	quotes, err := client.Shop(context.Background(), testRequest())

	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "UPSX Ground", quotes[0].DisplayName)
}

func TestClient_Rate_MetricSystem(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	cfg := testConfig()
	cfg.UOMSystem = ups.UOMMetric
	client := newTestClient(cfg, mockAPI)

	req := testRequest()
	req.Packages[0].WeightUnit = "kg"
	_, err := client.Rate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "kg", client.WeightUnit())
	assert.Equal(t, "KGS", mockAPI.RateRequests()[0].Shipment.Packages[0].PackageWeight.UnitOfMeasurement.Code)
}

func TestClient_Rate_InvalidPackage(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client := newTestClient(testConfig(), mockAPI)

	req := testRequest()
	req.Packages[0].TypeCode = "99"
	_, err := client.Rate(context.Background(), req)
	assert.ErrorIs(t, err, shipper.ErrInvalidPackage)

	req = testRequest()
	req.Packages[0].WeightUnit = "kg"
	_, err = client.Rate(context.Background(), req)
	assert.ErrorIs(t, err, shipper.ErrInvalidPackage)

	req = testRequest()
	req.Packages = nil
	_, err = client.Rate(context.Background(), req)
	assert.ErrorIs(t, err, shipper.ErrInvalidPackage)

	assert.Equal(t, 0, mockAPI.Calls())
}

func TestClient_Confirm_Success(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client := newTestClient(testConfig(), mockAPI)

	req := testRequest()
	req.SaturdayDelivery = true
	conf, err := client.Confirm(context.Background(), req)

	require.NoError(t, err)
	assert.NotEmpty(t, conf.Digest)
	assert.NotEmpty(t, conf.ShipmentIdentificationNumber)
	assert.True(t, decimal.RequireFromString("15.50").Equal(conf.Charges.Amount))

	sent := mockAPI.ConfirmRequests()[0]
	assert.Equal(t, "ShipConfirm", sent.Request.RequestAction)
	assert.Equal(t, "03", sent.Shipment.Service.Code)
	assert.Equal(t, "A1B2C3", sent.Shipment.PaymentInformation.Prepaid.BillShipper.AccountNumber)
	require.NotNil(t, sent.Shipment.ShipmentServiceOptions)
	assert.NotNil(t, sent.Shipment.ShipmentServiceOptions.SaturdayDelivery)
	assert.Equal(t, "GIF", sent.LabelSpecification.LabelImageFormat.Code)
}

func TestClient_Confirm_WithoutSaturdayDelivery(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client := newTestClient(testConfig(), mockAPI)

	_, err := client.Confirm(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Nil(t, mockAPI.ConfirmRequests()[0].Shipment.ShipmentServiceOptions)
}

func TestClient_Confirm_ServiceTypeRequired(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client := newTestClient(testConfig(), mockAPI)

	req := testRequest()
	req.ServiceCode = ""
	_, err := client.Confirm(context.Background(), req)

	require.ErrorIs(t, err, shipper.ErrServiceTypeRequired)
	assert.Equal(t, 0, mockAPI.Calls())
}

func TestClient_Accept_Success(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client := newTestClient(testConfig(), mockAPI)

	ctx := context.Background()
	conf, err := client.Confirm(ctx, testRequest())
	require.NoError(t, err)

	label, err := client.Accept(ctx, conf)

	require.NoError(t, err)
	assert.Contains(t, label.TrackingNumber, "1Z")
	assert.Equal(t, []byte("GIF89a mock label"), label.Image)
	assert.Equal(t, "GIF", label.ImageFormat)
	assert.Equal(t, "USD", label.Charges.Currency)

	accepts := mockAPI.AcceptRequests()
	require.Len(t, accepts, 1)
	assert.Equal(t, conf.Digest, accepts[0].ShipmentDigest)
}

func TestClient_Accept_MultiplePackages(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnAccept = func(ctx context.Context, req *ups.ShipmentAcceptRequest) (*ups.ShipmentAcceptResponse, error) {
		return &ups.ShipmentAcceptResponse{
			ShipmentResults: ups.ShipmentResults{
				ShipmentCharges: ups.ShipmentCharges{
					TotalCharges: ups.MonetaryAmount{CurrencyCode: "USD", MonetaryValue: "20.00"},
				},
				PackageResults: []ups.PackageResult{
					{TrackingNumber: "1Z1"},
					{TrackingNumber: "1Z2"},
				},
			},
		}, nil
	}
	client := newTestClient(testConfig(), mockAPI)

	_, err := client.Accept(context.Background(), &shipper.Confirmation{Digest: "digest"})

	var multiErr *shipper.MultiPackageUnsupportedError
	require.ErrorAs(t, err, &multiErr)
	assert.Equal(t, 2, multiErr.Count)
}

func TestClient_Accept_MissingDigest(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client := newTestClient(testConfig(), mockAPI)

	_, err := client.Accept(context.Background(), &shipper.Confirmation{})

	var reqErr *shipper.CarrierRequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 0, mockAPI.Calls())
}
