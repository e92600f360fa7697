package graphql

// This file will be automatically regenerated based on the schema, any resolver
// implementations will be copied through when generating and any unknown code
// will be moved to the end.
// Code generated by github.com/99designs/gqlgen version v0.17.84

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tournevent/ups/internal/graphql/generated"
	"github.com/tournevent/ups/internal/store"
	"github.com/tournevent/ups/pkg/shipper/ups"
)

// Health is the resolver for the health field.
func (r *queryResolver) Health(ctx context.Context) (string, error) {
	return "ok", nil
}

// Carriers is the resolver for the carriers field.
func (r *queryResolver) Carriers(ctx context.Context) ([]string, error) {
	return r.Service.Registry().Names(), nil
}

// Services is the resolver for the services field.
func (r *queryResolver) Services(ctx context.Context, carrier string) ([]*generated.Service, error) {
	strategy, err := r.Service.Registry().Get(carrier)
	if err != nil {
		return nil, err
	}
	lister, ok := strategy.(serviceLister)
	if !ok {
		return nil, fmt.Errorf("carrier %s does not publish a service table", carrier)
	}

	table := lister.Services()
	services := make([]*generated.Service, 0, len(table))
	for _, code := range table.Codes() {
		name, _ := table.Name(code)
		services = append(services, &generated.Service{Code: code, Name: name})
	}
	return services, nil
}

// PackageTypes is the resolver for the packageTypes field.
func (r *queryResolver) PackageTypes(ctx context.Context) ([]*generated.PackageType, error) {
	codes := ups.PackageTypes()
	types := make([]*generated.PackageType, 0, len(codes))
	for _, code := range codes {
		name, err := ups.PackageTypeName(code)
		if err != nil {
			return nil, err
		}
		types = append(types, &generated.PackageType{Code: code, Name: name})
	}
	return types, nil
}

// ComputeShippingRate is the resolver for the computeShippingRate field.
func (r *queryResolver) ComputeShippingRate(ctx context.Context, input generated.OrderInput) (result *generated.Money, err error) {
	start := time.Now()
	carrier := deref(input.Carrier)
	defer func() { r.observe(ctx, "computeShippingRate", carrier, start, err) }()

	order, err := orderInputToModel(input)
	if err != nil {
		return nil, err
	}
	cost, err := r.Service.ComputeRate(ctx, order)
	if err != nil {
		return nil, err
	}
	return moneyToGraphQL(cost), nil
}

// ShopShippingRates is the resolver for the shopShippingRates field.
func (r *queryResolver) ShopShippingRates(ctx context.Context, input generated.OrderInput, silent bool) (result []*generated.RateQuote, err error) {
	start := time.Now()
	carrier := deref(input.Carrier)
	if carrier == "" {
		carrier = "all"
	}
	defer func() { r.observe(ctx, "shopShippingRates", carrier, start, err) }()

	order, err := orderInputToModel(input)
	if err != nil {
		return nil, err
	}
	quotes, err := r.Service.ShopRates(ctx, order, silent)
	if err != nil {
		return nil, err
	}

	result = make([]*generated.RateQuote, len(quotes))
	for i, q := range quotes {
		result[i] = rateToGraphQL(q)
	}
	return result, nil
}

// ShippingLine is the resolver for the shippingLine field.
func (r *queryResolver) ShippingLine(ctx context.Context, input generated.OrderInput, ignoreCarrierComputation bool) (result *generated.ShippingLine, err error) {
	start := time.Now()
	carrier := deref(input.Carrier)
	defer func() { r.observe(ctx, "shippingLine", carrier, start, err) }()

	order, err := orderInputToModel(input)
	if err != nil {
		return nil, err
	}
	line, err := r.Service.ShippingLine(ctx, order, ignoreCarrierComputation)
	if err != nil {
		return nil, err
	}
	return shippingLineToGraphQL(line), nil
}

// EstimateShipmentCost is the resolver for the estimateShipmentCost field.
func (r *queryResolver) EstimateShipmentCost(ctx context.Context, input generated.ShipmentInput) (result *generated.Money, err error) {
	start := time.Now()
	defer func() { r.observe(ctx, "estimateShipmentCost", input.Carrier, start, err) }()

	shipment, err := shipmentInputToModel(input)
	if err != nil {
		return nil, err
	}
	cost, err := r.Service.EstimateShipmentCost(ctx, shipment)
	if err != nil {
		return nil, err
	}
	return moneyToGraphQL(cost), nil
}

// Label is the resolver for the label field.
func (r *queryResolver) Label(ctx context.Context, shipmentID string) (*generated.Label, error) {
	rec, atts, err := r.Service.Label(ctx, shipmentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return labelToGraphQL(rec, atts), nil
}

// GenerateShippingLabel is the resolver for the generateShippingLabel field.
func (r *mutationResolver) GenerateShippingLabel(ctx context.Context, input generated.ShipmentInput) (result *generated.Label, err error) {
	start := time.Now()
	defer func() { r.observe(ctx, "generateShippingLabel", input.Carrier, start, err) }()

	shipment, err := shipmentInputToModel(input)
	if err != nil {
		return nil, err
	}
	if _, err = r.Service.GenerateLabel(ctx, shipment); err != nil {
		return nil, err
	}
	r.Metrics.RecordLabel(input.Carrier)

	rec, atts, err := r.Service.Label(ctx, shipment.ID)
	if err != nil {
		return nil, err
	}
	return labelToGraphQL(rec, atts), nil
}

// Mutation returns generated.MutationResolver implementation.
func (r *Resolver) Mutation() generated.MutationResolver { return &mutationResolver{r} }

// Query returns generated.QueryResolver implementation.
func (r *Resolver) Query() generated.QueryResolver { return &queryResolver{r} }

type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
