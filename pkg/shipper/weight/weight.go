// Package weight aggregates the shipping weight of order and shipment lines.
package weight

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tournevent/ups/pkg/shipper"
)

// conversionPlaces bounds the scale of converted quantities so that exact
// conversions (453.59237 g to lb) do not leave division residue behind.
const conversionPlaces = 6

// Category groups units that can be converted into each other.
type Category string

const (
	CategoryWeight Category = "weight"
	CategoryCount  Category = "unit"
)

// Unit is a unit of measure. Rate is the number of reference units of the
// category contained in one of this unit.
type Unit struct {
	Symbol   string
	Category Category
	Rate     decimal.Decimal
}

// IsZero reports whether the unit is unset.
func (u Unit) IsZero() bool {
	return u.Symbol == ""
}

func (u Unit) String() string {
	return u.Symbol
}

var (
	KG    = Unit{Symbol: "kg", Category: CategoryWeight, Rate: decimal.NewFromInt(1)}
	G     = Unit{Symbol: "g", Category: CategoryWeight, Rate: decimal.RequireFromString("0.001")}
	LB    = Unit{Symbol: "lb", Category: CategoryWeight, Rate: decimal.RequireFromString("0.45359237")}
	OZ    = Unit{Symbol: "oz", Category: CategoryWeight, Rate: decimal.RequireFromString("0.028349523125")}
	Each  = Unit{Symbol: "u", Category: CategoryCount, Rate: decimal.NewFromInt(1)}
	Dozen = Unit{Symbol: "dozen", Category: CategoryCount, Rate: decimal.NewFromInt(12)}
)

var units = map[string]Unit{
	KG.Symbol:    KG,
	G.Symbol:     G,
	LB.Symbol:    LB,
	OZ.Symbol:    OZ,
	Each.Symbol:  Each,
	Dozen.Symbol: Dozen,
}

var (
	// ErrUnknownUnit indicates a unit symbol that is not registered.
	ErrUnknownUnit = errors.New("unknown unit of measure")

	// ErrIncompatibleUnits indicates a conversion across categories.
	ErrIncompatibleUnits = errors.New("incompatible units of measure")
)

// Lookup returns the unit registered under symbol.
func Lookup(symbol string) (Unit, error) {
	u, ok := units[symbol]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, symbol)
	}
	return u, nil
}

// Convert expresses qty, given in from, in the unit to.
func Convert(qty decimal.Decimal, from, to Unit) (decimal.Decimal, error) {
	if from.Symbol == to.Symbol {
		return qty, nil
	}
	if from.IsZero() || to.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %q to %q", ErrUnknownUnit, from.Symbol, to.Symbol)
	}
	if from.Category != to.Category {
		return decimal.Zero, fmt.Errorf("%w: %s to %s", ErrIncompatibleUnits, from, to)
	}
	return qty.Mul(from.Rate).Div(to.Rate).Round(conversionPlaces), nil
}

// ProductType classifies products. Only goods and assets have a weight.
type ProductType string

const (
	ProductGoods   ProductType = "goods"
	ProductAssets  ProductType = "assets"
	ProductService ProductType = "service"
)

// Product is the part of a product record the aggregator reads.
type Product struct {
	Name        string
	Type        ProductType
	Weight      *decimal.Decimal
	WeightUnit  Unit
	DefaultUnit Unit
}

// Line is an order line or a stock move.
type Line struct {
	Product  Product
	Quantity decimal.Decimal
	Unit     Unit
}

// LineWeight returns the weight of a single line expressed in target.
// Service lines and non-positive quantities weigh nothing.
func LineWeight(line Line, target Unit) (decimal.Decimal, error) {
	p := line.Product
	if p.Type == ProductService || !line.Quantity.IsPositive() {
		return decimal.Zero, nil
	}
	if p.Weight == nil || p.Weight.IsZero() {
		return decimal.Zero, &shipper.MissingWeightError{Product: p.Name}
	}

	qty := line.Quantity
	if !line.Unit.IsZero() && !p.DefaultUnit.IsZero() && line.Unit.Symbol != p.DefaultUnit.Symbol {
		var err error
		qty, err = Convert(qty, line.Unit, p.DefaultUnit)
		if err != nil {
			return decimal.Zero, fmt.Errorf("product %s: %w", p.Name, err)
		}
	}

	w := p.Weight.Mul(qty)
	if p.WeightUnit.Symbol != target.Symbol {
		var err error
		w, err = Convert(w, p.WeightUnit, target)
		if err != nil {
			return decimal.Zero, fmt.Errorf("product %s: %w", p.Name, err)
		}
	}
	return w, nil
}

// Aggregate sums the weight of lines in target and rounds the total up to
// the next whole unit.
func Aggregate(lines []Line, target Unit) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range lines {
		w, err := LineWeight(line, target)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(w)
	}
	return total.Ceil(), nil
}
