// Package shipping runs the rate and label pipeline for orders and
// shipments.
package shipping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/ups/internal/lock"
	"github.com/tournevent/ups/internal/store"
	"github.com/tournevent/ups/pkg/shipper"
	"github.com/tournevent/ups/pkg/shipper/ups"
	"github.com/tournevent/ups/pkg/shipper/weight"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/tournevent/ups/internal/shipping"

// Service computes rates and generates labels through the registered
// carrier strategies.
type Service struct {
	registry *shipper.Registry
	store    store.Store
	locker   lock.Locker
	logger   *otelzap.Logger
	tracer   trace.Tracer
	opts     Options
	now      func() time.Time
}

// NewService creates a new shipping service.
func NewService(registry *shipper.Registry, st store.Store, locker lock.Locker, logger *otelzap.Logger, opts Options) *Service {
	return &Service{
		registry: registry,
		store:    st,
		locker:   locker,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
		opts:     opts,
		now:      time.Now,
	}
}

// Registry returns the carrier registry.
func (s *Service) Registry() *shipper.Registry {
	return s.registry
}

// ============================================================================
// Rates
// ============================================================================

// ComputeRate prices the service selected on the order.
func (s *Service) ComputeRate(ctx context.Context, order Order) (shipper.Money, error) {
	ctx, span := s.tracer.Start(ctx, "shipping.ComputeRate", trace.WithAttributes(attribute.String("order.id", order.ID)))
	defer span.End()

	strategy, err := s.registry.Get(order.Carrier)
	if err != nil {
		return shipper.Money{}, fail(span, err)
	}

	req, err := s.orderRequest(strategy, order)
	if err != nil {
		return shipper.Money{}, fail(span, err)
	}

	quote, err := strategy.Rate(ctx, req)
	if err != nil {
		s.logger.Ctx(ctx).Error("Rate request failed", zap.String("order_id", order.ID), zap.Error(err))
		return shipper.Money{}, fail(span, err)
	}
	return quote.Cost, nil
}

// ShopRates returns every service quote available for the order. An order
// without a carrier is shopped across all registered carriers. In silent
// mode carrier failures yield no quotes instead of an error.
func (s *Service) ShopRates(ctx context.Context, order Order, silent bool) ([]shipper.RateQuote, error) {
	ctx, span := s.tracer.Start(ctx, "shipping.ShopRates", trace.WithAttributes(
		attribute.String("order.id", order.ID),
		attribute.Bool("silent", silent),
	))
	defer span.End()

	if order.Carrier == "" {
		quotes, errs := s.registry.ShopAll(ctx, func(strategy shipper.CarrierStrategy) (*shipper.ShippingRequest, error) {
			return s.shopRequest(strategy, order)
		})
		for _, err := range errs {
			if silent && isCarrierFailure(err) {
				s.logger.Ctx(ctx).Warn("Ignoring carrier failure", zap.String("order_id", order.ID), zap.Error(err))
				continue
			}
			return nil, fail(span, err)
		}
		return quotes, nil
	}

	strategy, err := s.registry.Get(order.Carrier)
	if err != nil {
		return nil, fail(span, err)
	}
	req, err := s.shopRequest(strategy, order)
	if err != nil {
		return nil, fail(span, err)
	}

	quotes, err := strategy.Shop(ctx, req)
	if err != nil {
		if silent && isCarrierFailure(err) {
			s.logger.Ctx(ctx).Warn("Ignoring carrier failure", zap.String("order_id", order.ID), zap.Error(err))
			return []shipper.RateQuote{}, nil
		}
		return nil, fail(span, err)
	}
	return quotes, nil
}

// ShippingLine returns the cost line for the order. It returns nil when
// carrier computation is skipped or the carrier charges nothing.
func (s *Service) ShippingLine(ctx context.Context, order Order, ignoreCarrierComputation bool) (*ShippingLine, error) {
	if ignoreCarrierComputation {
		return nil, nil
	}

	cost, err := s.ComputeRate(ctx, order)
	if err != nil {
		return nil, err
	}
	if cost.IsZero() {
		return nil, nil
	}

	code := s.serviceCode(order.ServiceCode)
	return &ShippingLine{
		Carrier:     order.Carrier,
		ServiceCode: code,
		Description: fmt.Sprintf("%s %s", strings.ToUpper(order.Carrier), s.serviceName(order.Carrier, code)),
		Cost:        cost,
	}, nil
}

// ============================================================================
// Shipments
// ============================================================================

// ShipmentOptions returns a shipment carrying the order's service, package
// type and Saturday delivery choice.
func (s *Service) ShipmentOptions(order Order, shipment Shipment) Shipment {
	shipment.Carrier = order.Carrier
	shipment.ServiceCode = s.serviceCode(order.ServiceCode)
	shipment.PackageType = s.packageType(order.PackageType)
	shipment.SaturdayDelivery = order.SaturdayDelivery
	return shipment
}

// EstimateShipmentCost confirms the shipment with the carrier and returns
// the charges without accepting it.
func (s *Service) EstimateShipmentCost(ctx context.Context, shipment Shipment) (shipper.Money, error) {
	ctx, span := s.tracer.Start(ctx, "shipping.EstimateShipmentCost", trace.WithAttributes(attribute.String("shipment.id", shipment.ID)))
	defer span.End()

	strategy, err := s.registry.Get(shipment.Carrier)
	if err != nil {
		return shipper.Money{}, fail(span, err)
	}
	req, err := s.shipmentRequest(strategy, shipment)
	if err != nil {
		return shipper.Money{}, fail(span, err)
	}

	conf, err := strategy.Confirm(ctx, req)
	if err != nil {
		return shipper.Money{}, fail(span, err)
	}
	return conf.Charges, nil
}

// GenerateLabel confirms and accepts the shipment with its carrier and
// stores the tracking number, cost and label image in one write. A shipment
// is labeled at most once; the per-shipment lock keeps concurrent requests
// from both reaching the carrier.
func (s *Service) GenerateLabel(ctx context.Context, shipment Shipment) (*shipper.LabelResult, error) {
	ctx, span := s.tracer.Start(ctx, "shipping.GenerateLabel", trace.WithAttributes(attribute.String("shipment.id", shipment.ID)))
	defer span.End()

	if !shipment.State.Labelable() {
		return nil, fail(span, &shipper.InvalidShipmentStateError{ShipmentID: shipment.ID, State: string(shipment.State)})
	}

	strategy, err := s.registry.Get(shipment.Carrier)
	if err != nil {
		return nil, fail(span, err)
	}

	if shipment.TrackingNumber != "" {
		return nil, fail(span, &shipper.DuplicateLabelError{ShipmentID: shipment.ID, TrackingNumber: shipment.TrackingNumber})
	}
	if err := s.ensureUnlabeled(ctx, shipment.ID); err != nil {
		return nil, fail(span, err)
	}

	req, err := s.shipmentRequest(strategy, shipment)
	if err != nil {
		return nil, fail(span, err)
	}

	release, err := s.locker.Acquire(ctx, shipment.ID, s.opts.lockTTL())
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return nil, fail(span, fmt.Errorf("shipment %s: %w", shipment.ID, shipper.ErrLabelInProgress))
		}
		return nil, fail(span, err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Ctx(ctx).Warn("Failed to release label lock", zap.String("shipment_id", shipment.ID), zap.Error(err))
		}
	}()

	// A label may have been stored while we waited for the lock.
	if err := s.ensureUnlabeled(ctx, shipment.ID); err != nil {
		return nil, fail(span, err)
	}

	conf, err := strategy.Confirm(ctx, req)
	if err != nil {
		s.logger.Ctx(ctx).Error("Shipment confirm failed", zap.String("shipment_id", shipment.ID), zap.Error(err))
		return nil, fail(span, err)
	}

	result, err := strategy.Accept(ctx, conf)
	if err != nil {
		s.logger.Ctx(ctx).Error("Shipment accept failed", zap.String("shipment_id", shipment.ID), zap.Error(err))
		return nil, fail(span, err)
	}

	now := s.now().UTC()
	rec := store.LabelRecord{
		ShipmentID:                   shipment.ID,
		Carrier:                      strategy.Name(),
		TrackingNumber:               result.TrackingNumber,
		ShipmentIdentificationNumber: result.ShipmentIdentificationNumber,
		Cost:                         result.Charges.Amount,
		Currency:                     result.Charges.Currency,
		CreatedAt:                    now,
	}
	att := store.Attachment{
		ID:          uuid.NewString(),
		ShipmentID:  shipment.ID,
		Name:        AttachmentName(result),
		ContentType: contentType(result.ImageFormat),
		Data:        result.Image,
		CreatedAt:   now,
	}
	if err := s.store.SaveLabel(ctx, rec, att); err != nil {
		return nil, fail(span, err)
	}

	s.logger.Ctx(ctx).Info("Shipping label generated",
		zap.String("shipment_id", shipment.ID),
		zap.String("tracking_number", result.TrackingNumber),
		zap.String("cost", result.Charges.String()),
	)
	span.SetAttributes(attribute.String("tracking_number", result.TrackingNumber))

	return result, nil
}

// Label returns the stored label of a shipment with its attachments.
func (s *Service) Label(ctx context.Context, shipmentID string) (*store.LabelRecord, []store.Attachment, error) {
	rec, err := s.store.Label(ctx, shipmentID)
	if err != nil {
		return nil, nil, err
	}
	atts, err := s.store.Attachments(ctx, shipmentID)
	if err != nil {
		return nil, nil, err
	}
	return rec, atts, nil
}

// AttachmentName is the file name under which a label image is stored.
func AttachmentName(result *shipper.LabelResult) string {
	return fmt.Sprintf("%s_%s_.%s", result.TrackingNumber, result.ShipmentIdentificationNumber, strings.ToLower(result.ImageFormat))
}

func contentType(format string) string {
	switch strings.ToUpper(format) {
	case "GIF":
		return "image/gif"
	case "PNG":
		return "image/png"
	case "PDF":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

func (s *Service) ensureUnlabeled(ctx context.Context, shipmentID string) error {
	rec, err := s.store.Label(ctx, shipmentID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return err
	default:
		return &shipper.DuplicateLabelError{ShipmentID: shipmentID, TrackingNumber: rec.TrackingNumber}
	}
}

// ============================================================================
// Request building
// ============================================================================

func (s *Service) orderRequest(strategy shipper.CarrierStrategy, order Order) (*shipper.ShippingRequest, error) {
	return s.buildRequest(strategy, requestInput{
		reference:   order.ID,
		company:     order.Company,
		warehouse:   order.Warehouse,
		destination: order.ShipmentAddress,
		lines:       order.Lines,
		serviceCode: s.serviceCode(order.ServiceCode),
		packageType: order.PackageType,
		saturday:    order.SaturdayDelivery,
	})
}

func (s *Service) shopRequest(strategy shipper.CarrierStrategy, order Order) (*shipper.ShippingRequest, error) {
	req, err := s.orderRequest(strategy, order)
	if err != nil {
		return nil, err
	}
	req.ServiceCode = ""
	return req, nil
}

func (s *Service) shipmentRequest(strategy shipper.CarrierStrategy, shipment Shipment) (*shipper.ShippingRequest, error) {
	return s.buildRequest(strategy, requestInput{
		reference:   shipment.ID,
		company:     shipment.Company,
		warehouse:   shipment.Warehouse,
		destination: shipment.DeliveryAddress,
		lines:       shipment.Moves,
		serviceCode: s.serviceCode(shipment.ServiceCode),
		packageType: shipment.PackageType,
		saturday:    shipment.SaturdayDelivery,
	})
}

type requestInput struct {
	reference   string
	company     *shipper.Company
	warehouse   shipper.Address
	destination shipper.Address
	lines       []weight.Line
	serviceCode string
	packageType string
	saturday    bool
}

func (s *Service) buildRequest(strategy shipper.CarrierStrategy, in requestInput) (*shipper.ShippingRequest, error) {
	unit, err := weight.Lookup(strategy.WeightUnit())
	if err != nil {
		return nil, err
	}
	total, err := weight.Aggregate(in.lines, unit)
	if err != nil {
		return nil, err
	}

	return &shipper.ShippingRequest{
		Company:  in.company,
		Shipper:  in.warehouse,
		ShipFrom: in.warehouse,
		ShipTo:   in.destination,
		Packages: []shipper.Package{{
			TypeCode:   s.packageType(in.packageType),
			Weight:     total,
			WeightUnit: unit.Symbol,
		}},
		ServiceCode:      in.serviceCode,
		SaturdayDelivery: in.saturday,
		Reference:        in.reference,
	}, nil
}

func (s *Service) serviceCode(code string) string {
	if code != "" {
		return code
	}
	return s.opts.DefaultServiceCode
}

// serviceLister is implemented by carriers that publish their service table.
type serviceLister interface {
	Services() ups.ServiceTable
}

// serviceName returns the carrier's name for a service code, or the code
// itself when the carrier has none.
func (s *Service) serviceName(carrier, code string) string {
	strategy, err := s.registry.Get(carrier)
	if err != nil {
		return code
	}
	if lister, ok := strategy.(serviceLister); ok {
		if name, ok := lister.Services().Name(code); ok {
			return name
		}
	}
	return code
}

func (s *Service) packageType(code string) string {
	if code != "" {
		return code
	}
	return s.opts.DefaultPackageType
}

func isCarrierFailure(err error) bool {
	var reqErr *shipper.CarrierRequestError
	return errors.As(err, &reqErr)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
