// Package ups provides integration with the UPS XML shipping API.
package ups

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tournevent/ups/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	carrierName = "ups"
	tracerName  = "github.com/tournevent/ups/pkg/shipper/ups"

	labelFormat = "GIF"
)

// Client is the UPS carrier strategy.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new UPS client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewXMLAPIClient(XMLAPIClientConfig{
			BaseURL:    cfg.BaseURL,
			Sandbox:    cfg.Sandbox,
			LicenseKey: cfg.LicenseKey,
			UserID:     cfg.UserID,
			Password:   cfg.Password,
			Timeout:    RequestTimeout,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new UPS client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// WeightUnit returns the weight unit of the configured UOM system.
func (c *Client) WeightUnit() string {
	return c.config.WeightUnit()
}

// Services returns the known service table.
func (c *Client) Services() ServiceTable {
	return c.config.services()
}

// Rate returns the price of the requested service.
func (c *Client) Rate(ctx context.Context, req *shipper.ShippingRequest) (*shipper.RateQuote, error) {
	ctx, span := c.tracer.Start(ctx, "ups.Rate", trace.WithAttributes(attribute.String("ups.service", req.ServiceCode)))
	defer span.End()

	if err := c.config.Validate(); err != nil {
		return nil, fail(span, err)
	}
	if req.ServiceCode == "" {
		return nil, fail(span, shipper.ErrServiceTypeRequired)
	}

	apiReq, err := c.ratingRequest(req, "Rate")
	if err != nil {
		return nil, fail(span, err)
	}

	c.logger.Info("Getting UPS rate",
		zap.String("service", req.ServiceCode),
		zap.String("destination_country", apiReq.Shipment.ShipTo.Address.CountryCode),
		zap.Int("package_count", len(apiReq.Shipment.Packages)),
	)

	apiResp, err := c.apiClient.Rate(ctx, apiReq)
	if err != nil {
		c.logger.Error("UPS API error", zap.String("operation", "rate"), zap.Error(err))
		return nil, fail(span, requestError("rate", err))
	}
	if len(apiResp.RatedShipments) == 0 {
		return nil, fail(span, shipper.NewCarrierRequestError(carrierName, "rate", "no rated shipment returned"))
	}

	rated := apiResp.RatedShipments[0]
	cost, err := c.ratedCost(rated)
	if err != nil {
		return nil, fail(span, err)
	}

	code := rated.Service.Code
	if code == "" {
		code = req.ServiceCode
	}
	quote := c.quote(code, cost, rated)
	return &quote, nil
}

// Shop returns a quote for every known service UPS offers on the route.
// Services missing from the service table are dropped.
func (c *Client) Shop(ctx context.Context, req *shipper.ShippingRequest) ([]shipper.RateQuote, error) {
	ctx, span := c.tracer.Start(ctx, "ups.Shop")
	defer span.End()

	if err := c.config.Validate(); err != nil {
		return nil, fail(span, err)
	}

	apiReq, err := c.ratingRequest(req, "Shop")
	if err != nil {
		return nil, fail(span, err)
	}

	c.logger.Info("Shopping UPS rates",
		zap.String("destination_country", apiReq.Shipment.ShipTo.Address.CountryCode),
		zap.Int("package_count", len(apiReq.Shipment.Packages)),
	)

	apiResp, err := c.apiClient.Rate(ctx, apiReq)
	if err != nil {
		c.logger.Error("UPS API error", zap.String("operation", "shop"), zap.Error(err))
		return nil, fail(span, requestError("shop", err))
	}

	services := c.config.services()
	quotes := make([]shipper.RateQuote, 0, len(apiResp.RatedShipments))
	for _, rated := range apiResp.RatedShipments {
		if _, ok := services.Name(rated.Service.Code); !ok {
			c.logger.Debug("Dropping unknown UPS service", zap.String("service", rated.Service.Code))
			continue
		}
		cost, err := c.ratedCost(rated)
		if err != nil {
			return nil, fail(span, err)
		}
		quotes = append(quotes, c.quote(rated.Service.Code, cost, rated))
	}
	span.SetAttributes(attribute.Int("ups.quotes", len(quotes)))
	return quotes, nil
}

// Confirm sends a ShipmentConfirmRequest and returns the digest and the
// charges of the shipment.
func (c *Client) Confirm(ctx context.Context, req *shipper.ShippingRequest) (*shipper.Confirmation, error) {
	ctx, span := c.tracer.Start(ctx, "ups.Confirm", trace.WithAttributes(attribute.String("ups.service", req.ServiceCode)))
	defer span.End()

	if err := c.config.Validate(); err != nil {
		return nil, fail(span, err)
	}
	if req.ServiceCode == "" {
		return nil, fail(span, shipper.ErrServiceTypeRequired)
	}

	apiReq, err := c.confirmRequest(req)
	if err != nil {
		return nil, fail(span, err)
	}

	c.logger.Info("Confirming UPS shipment",
		zap.String("reference", req.Reference),
		zap.String("service", req.ServiceCode),
		zap.Bool("saturday_delivery", req.SaturdayDelivery),
	)

	apiResp, err := c.apiClient.Confirm(ctx, apiReq)
	if err != nil {
		c.logger.Error("UPS API error", zap.String("operation", "confirm"), zap.Error(err))
		return nil, fail(span, requestError("confirm", err))
	}

	charges, err := parseCharges("confirm", apiResp.ShipmentCharges.TotalCharges)
	if err != nil {
		return nil, fail(span, err)
	}

	return &shipper.Confirmation{
		ShipmentIdentificationNumber: apiResp.ShipmentIdentificationNumber,
		Digest:                       apiResp.ShipmentDigest,
		Charges:                      charges,
	}, nil
}

// Accept books a confirmed shipment. Only single package shipments are
// supported.
func (c *Client) Accept(ctx context.Context, conf *shipper.Confirmation) (*shipper.LabelResult, error) {
	ctx, span := c.tracer.Start(ctx, "ups.Accept")
	defer span.End()

	if err := c.config.Validate(); err != nil {
		return nil, fail(span, err)
	}
	if conf == nil || conf.Digest == "" {
		return nil, fail(span, shipper.NewCarrierRequestError(carrierName, "accept", "shipment digest is missing"))
	}

	c.logger.Info("Accepting UPS shipment",
		zap.String("shipment_identification_number", conf.ShipmentIdentificationNumber),
	)

	apiResp, err := c.apiClient.Accept(ctx, &ShipmentAcceptRequest{
		Request:        Request{RequestAction: "ShipAccept"},
		ShipmentDigest: conf.Digest,
	})
	if err != nil {
		c.logger.Error("UPS API error", zap.String("operation", "accept"), zap.Error(err))
		return nil, fail(span, requestError("accept", err))
	}

	results := apiResp.ShipmentResults
	switch n := len(results.PackageResults); {
	case n > 1:
		return nil, fail(span, &shipper.MultiPackageUnsupportedError{Count: n})
	case n == 0:
		return nil, fail(span, shipper.NewCarrierRequestError(carrierName, "accept", "no package results returned"))
	}
	pkg := results.PackageResults[0]

	charges, err := parseCharges("accept", results.ShipmentCharges.TotalCharges)
	if err != nil {
		return nil, fail(span, err)
	}

	image, err := base64.StdEncoding.DecodeString(strings.TrimSpace(pkg.LabelImage.GraphicImage))
	if err != nil {
		return nil, fail(span, shipper.NewCarrierRequestError(carrierName, "accept", "label image is not valid base64").WithCause(err))
	}

	format := pkg.LabelImage.LabelImageFormat.Code
	if format == "" {
		format = labelFormat
	}

	span.SetAttributes(attribute.String("ups.tracking_number", pkg.TrackingNumber))
	return &shipper.LabelResult{
		TrackingNumber:               pkg.TrackingNumber,
		ShipmentIdentificationNumber: results.ShipmentIdentificationNumber,
		Charges:                      charges,
		Image:                        image,
		ImageFormat:                  format,
	}, nil
}

// ============================================================================
// Request builders
// ============================================================================

func (c *Client) ratingRequest(req *shipper.ShippingRequest, option string) (*RatingRequest, error) {
	shipperEl, shipTo, shipFrom, err := c.parties(req)
	if err != nil {
		return nil, err
	}
	packages, err := c.packages(req.Packages)
	if err != nil {
		return nil, err
	}

	apiReq := &RatingRequest{
		Request: Request{
			TransactionReference: transactionReference(req.Reference),
			RequestAction:        "Rate",
			RequestOption:        option,
		},
		Shipment: RateShipment{
			Shipper:         shipperEl,
			ShipTo:          shipTo,
			ShipFrom:        shipFrom,
			Packages:        packages,
			RateInformation: c.rateInformation(),
		},
	}
	if option == "Rate" {
		apiReq.Shipment.Service = &CodeDescription{Code: req.ServiceCode}
	}
	return apiReq, nil
}

func (c *Client) confirmRequest(req *shipper.ShippingRequest) (*ShipmentConfirmRequest, error) {
	shipperEl, shipTo, shipFrom, err := c.parties(req)
	if err != nil {
		return nil, err
	}
	packages, err := c.packages(req.Packages)
	if err != nil {
		return nil, err
	}

	apiReq := &ShipmentConfirmRequest{
		Request: Request{
			TransactionReference: transactionReference(req.Reference),
			RequestAction:        "ShipConfirm",
			RequestOption:        "nonvalidate",
		},
		Shipment: ConfirmShipment{
			Shipper:  shipperEl,
			ShipTo:   shipTo,
			ShipFrom: shipFrom,
			PaymentInformation: PaymentInformation{
				Prepaid: Prepaid{BillShipper: BillShipper{AccountNumber: c.config.ShipperNumber}},
			},
			Service:         CodeDescription{Code: req.ServiceCode},
			Packages:        packages,
			RateInformation: c.rateInformation(),
		},
		LabelSpecification: LabelSpecification{
			LabelPrintMethod: CodeDescription{Code: labelFormat},
			HTTPUserAgent:    "Mozilla/4.5",
			LabelImageFormat: CodeDescription{Code: labelFormat},
		},
	}
	if req.SaturdayDelivery {
		apiReq.Shipment.ShipmentServiceOptions = &ShipmentServiceOptions{SaturdayDelivery: &Empty{}}
	}
	return apiReq, nil
}

func (c *Client) parties(req *shipper.ShippingRequest) (Shipper, Location, Location, error) {
	shipperEl, err := ShipperElement(req.Shipper, req.Company, c.config.ShipperNumber)
	if err != nil {
		return Shipper{}, Location{}, Location{}, err
	}
	shipTo, err := ShipTo(req.ShipTo)
	if err != nil {
		return Shipper{}, Location{}, Location{}, err
	}
	shipFrom, err := ShipFrom(req.ShipFrom, req.Company)
	if err != nil {
		return Shipper{}, Location{}, Location{}, err
	}
	return shipperEl, shipTo, shipFrom, nil
}

func (c *Client) packages(pkgs []shipper.Package) ([]Package, error) {
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("%w: at least one package is required", shipper.ErrInvalidPackage)
	}

	result := make([]Package, 0, len(pkgs))
	for _, p := range pkgs {
		typeCode := p.TypeCode
		if typeCode == "" {
			typeCode = DefaultPackageType
		}
		if _, err := PackageTypeName(typeCode); err != nil {
			return nil, err
		}
		if p.Weight.IsNegative() {
			return nil, fmt.Errorf("%w: negative weight %s", shipper.ErrInvalidPackage, p.Weight)
		}
		if p.WeightUnit != "" && p.WeightUnit != c.config.WeightUnit() {
			return nil, fmt.Errorf("%w: weight in %s, expected %s", shipper.ErrInvalidPackage, p.WeightUnit, c.config.WeightUnit())
		}

		result = append(result, Package{
			PackagingType: CodeDescription{Code: typeCode},
			PackageWeight: PackageWeight{
				UnitOfMeasurement: CodeDescription{Code: c.config.WeightCode()},
				Weight:            p.Weight.String(),
			},
			PackageServiceOptions: &PackageServiceOptions{
				InsuredValue: &MonetaryAmount{
					CurrencyCode:  p.InsuredValue.Currency,
					MonetaryValue: p.InsuredValue.Amount.String(),
				},
			},
		})
	}
	return result, nil
}

func (c *Client) rateInformation() *RateInformation {
	if !c.config.NegotiatedRates {
		return nil
	}
	return &RateInformation{NegotiatedRatesIndicator: &Empty{}}
}

func transactionReference(ref string) *TransactionReference {
	if ref == "" {
		return nil
	}
	return &TransactionReference{CustomerContext: ref}
}

// ============================================================================
// Response helpers
// ============================================================================

// ratedCost prefers the negotiated grand total when negotiated rates are
// enabled and the carrier returned one for this service.
func (c *Client) ratedCost(rated RatedShipment) (shipper.Money, error) {
	amount := rated.TotalCharges
	if c.config.NegotiatedRates && rated.NegotiatedRates != nil &&
		rated.NegotiatedRates.NetSummaryCharges.GrandTotal.MonetaryValue != "" {
		grand := rated.NegotiatedRates.NetSummaryCharges.GrandTotal
		if grand.CurrencyCode == "" {
			grand.CurrencyCode = amount.CurrencyCode
		}
		amount = grand
	}
	return parseCharges("rate", amount)
}

func (c *Client) quote(code string, cost shipper.Money, rated RatedShipment) shipper.RateQuote {
	name, ok := c.config.services().Name(code)
	if !ok {
		name = code
	}

	quote := shipper.RateQuote{
		Carrier:     carrierName,
		ServiceCode: code,
		DisplayName: fmt.Sprintf("%s %s", c.config.productCode(), name),
		Cost:        cost,
		Metadata: shipper.RateMetadata{
			ScheduledDeliveryTime: rated.ScheduledDeliveryTime,
		},
	}
	if days, err := strconv.Atoi(strings.TrimSpace(rated.GuaranteedDaysToDelivery)); err == nil {
		quote.Metadata.GuaranteedDaysToDelivery = &days
	}
	return quote
}

func parseCharges(operation string, amount MonetaryAmount) (shipper.Money, error) {
	money, err := shipper.ParseMoney(amount.MonetaryValue, amount.CurrencyCode)
	if err != nil {
		return shipper.Money{}, shipper.NewCarrierRequestError(carrierName, operation, "malformed charge in response").WithCause(err)
	}
	return money, nil
}

func requestError(operation string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return shipper.NewCarrierRequestError(carrierName, operation, apiErr.Description).
			WithCode(apiErr.Code).
			WithStatusCode(apiErr.StatusCode).
			WithCause(err)
	}
	return shipper.NewCarrierRequestError(carrierName, operation, err.Error()).WithCause(err)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

var _ shipper.CarrierStrategy = (*Client)(nil)
