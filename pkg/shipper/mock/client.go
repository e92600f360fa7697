// Package mock provides a mock carrier strategy for testing.
package mock

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"github.com/tournevent/ups/pkg/shipper"
)

// Client is a mock carrier strategy. Hooks override the canned behavior;
// counters record how many requests reached the carrier.
type Client struct {
	name string
	unit string

	OnRate    func(ctx context.Context, req *shipper.ShippingRequest) (*shipper.RateQuote, error)
	OnShop    func(ctx context.Context, req *shipper.ShippingRequest) ([]shipper.RateQuote, error)
	OnConfirm func(ctx context.Context, req *shipper.ShippingRequest) (*shipper.Confirmation, error)
	OnAccept  func(ctx context.Context, c *shipper.Confirmation) (*shipper.LabelResult, error)

	rateCalls    atomic.Int32
	shopCalls    atomic.Int32
	confirmCalls atomic.Int32
	acceptCalls  atomic.Int32
}

// New creates a new mock strategy weighing packages in kilograms.
func New(name string) *Client {
	return &Client{name: name, unit: "kg"}
}

// WithWeightUnit changes the unit reported by WeightUnit.
func (c *Client) WithWeightUnit(unit string) *Client {
	c.unit = unit
	return c
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// WeightUnit returns the configured weight unit.
func (c *Client) WeightUnit() string {
	return c.unit
}

// Rate returns a fixed quote for the requested service.
func (c *Client) Rate(ctx context.Context, req *shipper.ShippingRequest) (*shipper.RateQuote, error) {
	c.rateCalls.Add(1)
	if c.OnRate != nil {
		return c.OnRate(ctx, req)
	}
	if req.ServiceCode == "" {
		return nil, shipper.ErrServiceTypeRequired
	}
	q := c.quote(req.ServiceCode, "Standard", "12.50")
	return &q, nil
}

// Shop returns two canned quotes.
func (c *Client) Shop(ctx context.Context, req *shipper.ShippingRequest) ([]shipper.RateQuote, error) {
	c.shopCalls.Add(1)
	if c.OnShop != nil {
		return c.OnShop(ctx, req)
	}
	return []shipper.RateQuote{
		c.quote("STANDARD", "Standard", "12.50"),
		c.quote("EXPRESS", "Express", "24.00"),
	}, nil
}

// Confirm returns a canned confirmation.
func (c *Client) Confirm(ctx context.Context, req *shipper.ShippingRequest) (*shipper.Confirmation, error) {
	c.confirmCalls.Add(1)
	if c.OnConfirm != nil {
		return c.OnConfirm(ctx, req)
	}
	return &shipper.Confirmation{
		ShipmentIdentificationNumber: fmt.Sprintf("%s-SHIP-1", c.name),
		Digest:                       "digest",
		Charges:                      shipper.RoundMoney(decimal.RequireFromString("12.50"), "USD"),
	}, nil
}

// Accept returns a canned label.
func (c *Client) Accept(ctx context.Context, conf *shipper.Confirmation) (*shipper.LabelResult, error) {
	c.acceptCalls.Add(1)
	if c.OnAccept != nil {
		return c.OnAccept(ctx, conf)
	}
	return &shipper.LabelResult{
		TrackingNumber:               fmt.Sprintf("%s-TRACK-1", c.name),
		ShipmentIdentificationNumber: conf.ShipmentIdentificationNumber,
		Charges:                      conf.Charges,
		Image:                        []byte("label"),
		ImageFormat:                  "GIF",
	}, nil
}

// Calls returns the total number of carrier requests received.
func (c *Client) Calls() int {
	return int(c.rateCalls.Load() + c.shopCalls.Load() + c.confirmCalls.Load() + c.acceptCalls.Load())
}

// AcceptCalls returns the number of accept requests received.
func (c *Client) AcceptCalls() int {
	return int(c.acceptCalls.Load())
}

func (c *Client) quote(code, name, amount string) shipper.RateQuote {
	return shipper.RateQuote{
		Carrier:     c.name,
		ServiceCode: code,
		DisplayName: fmt.Sprintf("%s %s", c.name, name),
		Cost:        shipper.RoundMoney(decimal.RequireFromString(amount), "USD"),
	}
}

var _ shipper.CarrierStrategy = (*Client)(nil)
