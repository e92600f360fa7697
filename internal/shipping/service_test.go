package shipping_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/ups/internal/lock"
	"github.com/tournevent/ups/internal/shipping"
	"github.com/tournevent/ups/internal/store"
	"github.com/tournevent/ups/internal/store/sqlstore"
	"github.com/tournevent/ups/pkg/shipper"
	"github.com/tournevent/ups/pkg/shipper/mock"
	"github.com/tournevent/ups/pkg/shipper/ups"
	"github.com/tournevent/ups/pkg/shipper/weight"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

type fixture struct {
	svc    *shipping.Service
	api    *ups.MockAPIClient
	store  *sqlstore.Store
	locker *lock.Memory
}

func newFixture(t *testing.T, strategies ...shipper.CarrierStrategy) *fixture {
	t.Helper()

	logger := otelzap.New(zap.NewNop())
	api := ups.NewMockAPIClient()
	client := ups.NewWithAPIClient(ups.Config{
		LicenseKey:    "license",
		UserID:        "user",
		Password:      "secret",
		ShipperNumber: "A1B2C3",
		UOMSystem:     ups.UOMEnglish,
	}, api, logger, nil)

	registry := shipper.NewRegistry()
	registry.Register(client)
	for _, s := range strategies {
		registry.Register(s)
	}

	st, err := sqlstore.Open(sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	locker := lock.NewMemory()
	svc := shipping.NewService(registry, st, locker, logger, shipping.Options{
		DefaultPackageType: ups.DefaultPackageType,
		DefaultServiceCode: "03",
		LockTTL:            time.Minute,
	})
	return &fixture{svc: svc, api: api, store: st, locker: locker}
}

func product(name string, w string, unit weight.Unit) weight.Product {
	d := decimal.RequireFromString(w)
	return weight.Product{
		Name:        name,
		Type:        weight.ProductGoods,
		Weight:      &d,
		WeightUnit:  unit,
		DefaultUnit: weight.Each,
	}
}

func warehouse() shipper.Address {
	return shipper.Address{
		Name:            "Main Warehouse",
		Street:          "100 Dock Rd",
		City:            "Miami",
		CountryCode:     "US",
		SubdivisionCode: "US-FL",
		PostalCode:      "33101",
		Party:           shipper.Party{Name: "Openlabs Inc", Phone: "+1 (305) 555-0100"},
	}
}

func customer() shipper.Address {
	return shipper.Address{
		Name:            "John Doe",
		Street:          "1 Market St",
		City:            "San Francisco",
		CountryCode:     "US",
		SubdivisionCode: "US-CA",
		PostalCode:      "94105",
		Party:           shipper.Party{Name: "John Doe"},
	}
}

func testOrder() shipping.Order {
	return shipping.Order{
		ID:              "SO-1",
		Carrier:         "ups",
		Company:         &shipper.Company{Name: "Openlabs Inc", TaxID: "12-3456789"},
		Warehouse:       warehouse(),
		ShipmentAddress: customer(),
		Lines: []weight.Line{
			{Product: product("Mug", "2.3", weight.LB), Quantity: decimal.NewFromInt(1), Unit: weight.Each},
		},
	}
}

func testShipment() shipping.Shipment {
	return shipping.Shipment{
		ID:              "SHIP-1",
		State:           shipping.StatePacked,
		Carrier:         "ups",
		Company:         &shipper.Company{Name: "Openlabs Inc", TaxID: "12-3456789"},
		Warehouse:       warehouse(),
		DeliveryAddress: customer(),
		Moves: []weight.Line{
			{Product: product("Mug", "2.3", weight.LB), Quantity: decimal.NewFromInt(1), Unit: weight.Each},
		},
		ServiceCode: "03",
	}
}

func stubLabel(api *ups.MockAPIClient, tracking, identification, amount string) {
	api.OnConfirm = func(ctx context.Context, req *ups.ShipmentConfirmRequest) (*ups.ShipmentConfirmResponse, error) {
		return &ups.ShipmentConfirmResponse{
			Response:                     ups.Response{ResponseStatusCode: "1"},
			ShipmentCharges:              ups.ShipmentCharges{TotalCharges: ups.MonetaryAmount{CurrencyCode: "USD", MonetaryValue: amount}},
			ShipmentIdentificationNumber: identification,
			ShipmentDigest:               "digest",
		}, nil
	}
	api.OnAccept = func(ctx context.Context, req *ups.ShipmentAcceptRequest) (*ups.ShipmentAcceptResponse, error) {
		return &ups.ShipmentAcceptResponse{
			Response: ups.Response{ResponseStatusCode: "1"},
			ShipmentResults: ups.ShipmentResults{
				ShipmentCharges:              ups.ShipmentCharges{TotalCharges: ups.MonetaryAmount{CurrencyCode: "USD", MonetaryValue: amount}},
				ShipmentIdentificationNumber: identification,
				PackageResults: []ups.PackageResult{{
					TrackingNumber: tracking,
					LabelImage: ups.LabelImage{
						LabelImageFormat: ups.CodeDescription{Code: "GIF"},
						GraphicImage:     "R0lGODlh",
					},
				}},
			},
		}, nil
	}
}

// ============================================================================
// Label generation
// ============================================================================

func TestGenerateLabel_EndToEnd(t *testing.T) {
	f := newFixture(t)
	stubLabel(f.api, "1Z999", "1Z999AA1", "12.50")
	ctx := context.Background()

	result, err := f.svc.GenerateLabel(ctx, testShipment())
	require.NoError(t, err)
	assert.Equal(t, "1Z999", result.TrackingNumber)

	confirms := f.api.ConfirmRequests()
	require.Len(t, confirms, 1)
	require.Len(t, confirms[0].Shipment.Packages, 1)
	assert.Equal(t, "3", confirms[0].Shipment.Packages[0].PackageWeight.Weight)
	assert.Equal(t, "LBS", confirms[0].Shipment.Packages[0].PackageWeight.UnitOfMeasurement.Code)
	require.Len(t, f.api.AcceptRequests(), 1)
	assert.Equal(t, "digest", f.api.AcceptRequests()[0].ShipmentDigest)

	rec, atts, err := f.svc.Label(ctx, "SHIP-1")
	require.NoError(t, err)
	assert.Equal(t, "1Z999", rec.TrackingNumber)
	assert.True(t, decimal.RequireFromString("12.50").Equal(rec.Cost))
	assert.Equal(t, "USD", rec.Currency)
	require.Len(t, atts, 1)
	assert.Equal(t, "1Z999_1Z999AA1_.gif", atts[0].Name)
	assert.Equal(t, "image/gif", atts[0].ContentType)
	assert.Equal(t, []byte("GIF89a"), atts[0].Data)
}

func TestGenerateLabel_TrackingNumberPresent(t *testing.T) {
	f := newFixture(t)
	shipment := testShipment()
	shipment.TrackingNumber = "1Z000"

	_, err := f.svc.GenerateLabel(context.Background(), shipment)

	var dup *shipper.DuplicateLabelError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "1Z000", dup.TrackingNumber)
	assert.Equal(t, 0, f.api.Calls())
}

func TestGenerateLabel_StoredLabel(t *testing.T) {
	f := newFixture(t)
	stubLabel(f.api, "1Z999", "1Z999AA1", "12.50")
	ctx := context.Background()

	_, err := f.svc.GenerateLabel(ctx, testShipment())
	require.NoError(t, err)
	calls := f.api.Calls()

	_, err = f.svc.GenerateLabel(ctx, testShipment())
	var dup *shipper.DuplicateLabelError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "1Z999", dup.TrackingNumber)
	assert.Equal(t, calls, f.api.Calls())
}

func TestGenerateLabel_InvalidState(t *testing.T) {
	for _, state := range []shipping.State{shipping.StateDraft, shipping.StateWaiting, shipping.StateAssigned, shipping.StateCancelled} {
		t.Run(string(state), func(t *testing.T) {
			f := newFixture(t)
			shipment := testShipment()
			shipment.State = state

			_, err := f.svc.GenerateLabel(context.Background(), shipment)

			var stateErr *shipper.InvalidShipmentStateError
			require.ErrorAs(t, err, &stateErr)
			assert.Equal(t, string(state), stateErr.State)
			assert.Equal(t, 0, f.api.Calls())
		})
	}
}

func TestGenerateLabel_DoneState(t *testing.T) {
	f := newFixture(t)
	stubLabel(f.api, "1Z999", "1Z999AA1", "12.50")
	shipment := testShipment()
	shipment.State = shipping.StateDone

	_, err := f.svc.GenerateLabel(context.Background(), shipment)
	assert.NoError(t, err)
}

func TestGenerateLabel_UnknownCarrier(t *testing.T) {
	f := newFixture(t)
	shipment := testShipment()
	shipment.Carrier = "dhl"

	_, err := f.svc.GenerateLabel(context.Background(), shipment)
	assert.ErrorIs(t, err, shipper.ErrCarrierNotFound)
}

func TestGenerateLabel_MissingService(t *testing.T) {
	f := newFixture(t)
	svc := shipping.NewService(f.svc.Registry(), f.store, f.locker, otelzap.New(zap.NewNop()), shipping.Options{})
	shipment := testShipment()
	shipment.ServiceCode = ""

	_, err := svc.GenerateLabel(context.Background(), shipment)
	assert.ErrorIs(t, err, shipper.ErrServiceTypeRequired)
	assert.Equal(t, 0, f.api.Calls())
}

func TestGenerateLabel_LockHeld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.locker.Acquire(ctx, "SHIP-1", time.Minute)
	require.NoError(t, err)

	_, err = f.svc.GenerateLabel(ctx, testShipment())
	assert.ErrorIs(t, err, shipper.ErrLabelInProgress)
	assert.Equal(t, 0, f.api.Calls())
}

func TestGenerateLabel_MultiPackage(t *testing.T) {
	f := newFixture(t)
	stubLabel(f.api, "1Z999", "1Z999AA1", "12.50")
	f.api.OnAccept = func(ctx context.Context, req *ups.ShipmentAcceptRequest) (*ups.ShipmentAcceptResponse, error) {
		return &ups.ShipmentAcceptResponse{
			Response: ups.Response{ResponseStatusCode: "1"},
			ShipmentResults: ups.ShipmentResults{
				PackageResults: []ups.PackageResult{{TrackingNumber: "1Z1"}, {TrackingNumber: "1Z2"}},
			},
		}, nil
	}
	ctx := context.Background()

	_, err := f.svc.GenerateLabel(ctx, testShipment())

	var multi *shipper.MultiPackageUnsupportedError
	require.ErrorAs(t, err, &multi)
	assert.Equal(t, 2, multi.Count)

	_, err = f.store.Label(ctx, "SHIP-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGenerateLabel_AcceptFailureLeavesShipmentUnchanged(t *testing.T) {
	f := newFixture(t)
	stubLabel(f.api, "1Z999", "1Z999AA1", "12.50")
	f.api.OnAccept = func(ctx context.Context, req *ups.ShipmentAcceptRequest) (*ups.ShipmentAcceptResponse, error) {
		return nil, &ups.APIError{Code: "120541", Description: "Invalid digest"}
	}
	ctx := context.Background()

	_, err := f.svc.GenerateLabel(ctx, testShipment())

	var reqErr *shipper.CarrierRequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Invalid digest", reqErr.Message)

	_, err = f.store.Label(ctx, "SHIP-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	atts, err := f.store.Attachments(ctx, "SHIP-1")
	require.NoError(t, err)
	assert.Empty(t, atts)

	// The lock is released after a failure.
	stubLabel(f.api, "1Z999", "1Z999AA1", "12.50")
	_, err = f.svc.GenerateLabel(ctx, testShipment())
	assert.NoError(t, err)
}

func TestGenerateLabel_ConcurrentRequests(t *testing.T) {
	acme := mock.New("acme")
	acme.OnConfirm = func(ctx context.Context, req *shipper.ShippingRequest) (*shipper.Confirmation, error) {
		time.Sleep(20 * time.Millisecond)
		return &shipper.Confirmation{
			ShipmentIdentificationNumber: "ACME-1",
			Digest:                       "digest",
			Charges:                      shipper.RoundMoney(decimal.RequireFromString("9.99"), "USD"),
		}, nil
	}
	f := newFixture(t, acme)

	shipment := testShipment()
	shipment.Carrier = "acme"

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.GenerateLabel(context.Background(), shipment)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		var dup *shipper.DuplicateLabelError
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, shipper.ErrLabelInProgress), errors.As(err, &dup):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, acme.AcceptCalls())

	atts, err := f.store.Attachments(context.Background(), "SHIP-1")
	require.NoError(t, err)
	assert.Len(t, atts, 1)
}

// ============================================================================
// Rates
// ============================================================================

func TestComputeRate(t *testing.T) {
	f := newFixture(t)

	cost, err := f.svc.ComputeRate(context.Background(), testOrder())
	require.NoError(t, err)
	assert.Equal(t, "15.50 USD", cost.String())

	rates := f.api.RateRequests()
	require.Len(t, rates, 1)
	assert.Equal(t, "Rate", rates[0].Request.RequestOption)
	assert.Equal(t, "03", rates[0].Shipment.Service.Code)
	assert.Equal(t, "3", rates[0].Shipment.Packages[0].PackageWeight.Weight)
	assert.Equal(t, "02", rates[0].Shipment.Packages[0].PackagingType.Code)
	assert.Equal(t, "SO-1", rates[0].Request.TransactionReference.CustomerContext)
}

func TestComputeRate_MissingWeight(t *testing.T) {
	f := newFixture(t)
	order := testOrder()
	order.Lines = append(order.Lines, weight.Line{
		Product:  weight.Product{Name: "Anvil", Type: weight.ProductGoods},
		Quantity: decimal.NewFromInt(1),
	})

	_, err := f.svc.ComputeRate(context.Background(), order)

	var missing *shipper.MissingWeightError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Anvil", missing.Product)
	assert.Equal(t, 0, f.api.Calls())
}

func TestComputeRate_AddressError(t *testing.T) {
	f := newFixture(t)
	order := testOrder()
	order.Company = nil

	_, err := f.svc.ComputeRate(context.Background(), order)
	assert.ErrorIs(t, err, shipper.ErrCompanyRequired)
	assert.Equal(t, 0, f.api.Calls())
}

func TestComputeRate_CarrierError(t *testing.T) {
	f := newFixture(t)
	f.api.SimulateErrors = true

	_, err := f.svc.ComputeRate(context.Background(), testOrder())

	var reqErr *shipper.CarrierRequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "MOCK_ERROR", reqErr.Code)
}

func TestShopRates(t *testing.T) {
	f := newFixture(t)

	quotes, err := f.svc.ShopRates(context.Background(), testOrder(), false)
	require.NoError(t, err)
	assert.Len(t, quotes, 3)

	rates := f.api.RateRequests()
	require.Len(t, rates, 1)
	assert.Equal(t, "Shop", rates[0].Request.RequestOption)
	assert.Nil(t, rates[0].Shipment.Service)
}

func TestShopRates_Silent(t *testing.T) {
	f := newFixture(t)
	f.api.SimulateErrors = true

	quotes, err := f.svc.ShopRates(context.Background(), testOrder(), true)
	require.NoError(t, err)
	assert.Empty(t, quotes)

	_, err = f.svc.ShopRates(context.Background(), testOrder(), false)
	var reqErr *shipper.CarrierRequestError
	assert.ErrorAs(t, err, &reqErr)
}

func TestShopRates_SilentKeepsValidationErrors(t *testing.T) {
	f := newFixture(t)
	order := testOrder()
	order.ShipmentAddress.CountryCode = ""

	_, err := f.svc.ShopRates(context.Background(), order, true)
	assert.True(t, shipper.IsValidation(err))
}

func TestShopRates_AllCarriers(t *testing.T) {
	acme := mock.New("acme")
	f := newFixture(t, acme)
	order := testOrder()
	order.Carrier = ""

	quotes, err := f.svc.ShopRates(context.Background(), order, false)
	require.NoError(t, err)
	assert.Len(t, quotes, 5)

	carriers := map[string]int{}
	for _, q := range quotes {
		carriers[q.Carrier]++
	}
	assert.Equal(t, map[string]int{"ups": 3, "acme": 2}, carriers)
}

func TestShopRates_AllCarriersSilent(t *testing.T) {
	acme := mock.New("acme")
	f := newFixture(t, acme)
	f.api.SimulateErrors = true
	order := testOrder()
	order.Carrier = ""

	quotes, err := f.svc.ShopRates(context.Background(), order, true)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	for _, q := range quotes {
		assert.Equal(t, "acme", q.Carrier)
	}

	_, err = f.svc.ShopRates(context.Background(), order, false)
	assert.Error(t, err)
}

func TestShippingLine(t *testing.T) {
	f := newFixture(t)

	line, err := f.svc.ShippingLine(context.Background(), testOrder(), false)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, "ups", line.Carrier)
	assert.Equal(t, "03", line.ServiceCode)
	assert.Equal(t, "UPS Ground", line.Description)
	assert.Equal(t, "15.50 USD", line.Cost.String())
}

func TestShippingLine_DescriptionFallsBackToCode(t *testing.T) {
	f := newFixture(t, mock.New("acme"))
	order := testOrder()
	order.Carrier = "acme"

	line, err := f.svc.ShippingLine(context.Background(), order, false)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, "ACME 03", line.Description)
	assert.Equal(t, "12.50 USD", line.Cost.String())
}

func TestShippingLine_IgnoreCarrierComputation(t *testing.T) {
	f := newFixture(t)

	line, err := f.svc.ShippingLine(context.Background(), testOrder(), true)
	require.NoError(t, err)
	assert.Nil(t, line)
	assert.Equal(t, 0, f.api.Calls())
}

func TestShippingLine_ZeroCost(t *testing.T) {
	f := newFixture(t)
	f.api.OnRate = func(ctx context.Context, req *ups.RatingRequest) (*ups.RatingResponse, error) {
		return &ups.RatingResponse{
			Response: ups.Response{ResponseStatusCode: "1"},
			RatedShipments: []ups.RatedShipment{{
				Service:      ups.CodeDescription{Code: "03"},
				TotalCharges: ups.MonetaryAmount{CurrencyCode: "USD", MonetaryValue: "0.00"},
			}},
		}, nil
	}

	line, err := f.svc.ShippingLine(context.Background(), testOrder(), false)
	require.NoError(t, err)
	assert.Nil(t, line)
}

// ============================================================================
// Shipments
// ============================================================================

func TestEstimateShipmentCost(t *testing.T) {
	f := newFixture(t)

	cost, err := f.svc.EstimateShipmentCost(context.Background(), testShipment())
	require.NoError(t, err)
	assert.Equal(t, "15.50 USD", cost.String())
	assert.Len(t, f.api.ConfirmRequests(), 1)
	assert.Empty(t, f.api.AcceptRequests())
}

func TestShipmentOptions(t *testing.T) {
	f := newFixture(t)

	order := testOrder()
	order.SaturdayDelivery = true
	got := f.svc.ShipmentOptions(order, shipping.Shipment{ID: "SHIP-2"})

	assert.Equal(t, "SHIP-2", got.ID)
	assert.Equal(t, "ups", got.Carrier)
	assert.Equal(t, "03", got.ServiceCode)
	assert.Equal(t, ups.DefaultPackageType, got.PackageType)
	assert.True(t, got.SaturdayDelivery)

	order.ServiceCode = "01"
	order.PackageType = "21"
	got = f.svc.ShipmentOptions(order, shipping.Shipment{})
	assert.Equal(t, "01", got.ServiceCode)
	assert.Equal(t, "21", got.PackageType)
}

func TestAttachmentName(t *testing.T) {
	name := shipping.AttachmentName(&shipper.LabelResult{
		TrackingNumber:               "1Z999",
		ShipmentIdentificationNumber: "1Z999AA1",
		ImageFormat:                  "GIF",
	})
	assert.Equal(t, "1Z999_1Z999AA1_.gif", name)
}
