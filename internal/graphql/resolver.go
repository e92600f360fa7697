package graphql

import (
	"context"
	"errors"
	"time"

	"github.com/tournevent/ups/internal/graphql/generated"
	"github.com/tournevent/ups/internal/shipping"
	"github.com/tournevent/ups/internal/telemetry"
	"github.com/tournevent/ups/pkg/shipper"
	"github.com/tournevent/ups/pkg/shipper/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Resolver is the root resolver for the GraphQL schema.
// It holds dependencies needed by all resolvers.
type Resolver struct {
	Service *shipping.Service
	Logger  *otelzap.Logger
	Metrics *telemetry.Metrics
}

var _ generated.ResolverRoot = (*Resolver)(nil)

// serviceLister is implemented by carriers that publish their service table.
type serviceLister interface {
	Services() ups.ServiceTable
}

// NewResolver creates a new resolver with the given dependencies.
func NewResolver(service *shipping.Service, logger *otelzap.Logger, metrics *telemetry.Metrics) *Resolver {
	return &Resolver{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
	}
}

// observe records the outcome of an operation.
func (r *Resolver) observe(ctx context.Context, operation, carrier string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
		var reqErr *shipper.CarrierRequestError
		if errors.As(err, &reqErr) {
			r.Metrics.RecordError(reqErr.Carrier, reqErr.Operation)
		}
		r.Logger.Ctx(ctx).Warn("Operation failed",
			zap.String("operation", operation),
			zap.String("carrier", carrier),
			zap.String("code", errorCode(err)),
			zap.Error(err),
		)
	}
	r.Metrics.RecordRequest(operation, carrier, status, time.Since(start).Seconds())
}
