package weight_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/ups/pkg/shipper"
	"github.com/tournevent/ups/pkg/shipper/weight"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func goods(name, w string, unit weight.Unit) weight.Product {
	return weight.Product{
		Name:        name,
		Type:        weight.ProductGoods,
		Weight:      decPtr(w),
		WeightUnit:  unit,
		DefaultUnit: weight.Each,
	}
}

func TestConvert(t *testing.T) {
	got, err := weight.Convert(dec("1"), weight.KG, weight.G)
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(got))

	got, err = weight.Convert(dec("453.59237"), weight.G, weight.LB)
	require.NoError(t, err)
	assert.True(t, dec("1").Equal(got), "got %s", got)

	got, err = weight.Convert(dec("16"), weight.OZ, weight.LB)
	require.NoError(t, err)
	assert.True(t, dec("1").Equal(got), "got %s", got)

	got, err = weight.Convert(dec("2"), weight.Dozen, weight.Each)
	require.NoError(t, err)
	assert.True(t, dec("24").Equal(got))
}

func TestConvert_IncompatibleUnits(t *testing.T) {
	_, err := weight.Convert(dec("1"), weight.KG, weight.Each)
	assert.ErrorIs(t, err, weight.ErrIncompatibleUnits)

	_, err = weight.Convert(dec("1"), weight.Unit{}, weight.KG)
	assert.ErrorIs(t, err, weight.ErrUnknownUnit)
}

func TestLookup(t *testing.T) {
	u, err := weight.Lookup("lb")
	require.NoError(t, err)
	assert.Equal(t, weight.LB, u)

	_, err = weight.Lookup("stone")
	assert.ErrorIs(t, err, weight.ErrUnknownUnit)
}

func TestLineWeight_ZeroContributions(t *testing.T) {
	service := weight.Product{Name: "Installation", Type: weight.ProductService}

	tests := []struct {
		name string
		line weight.Line
	}{
		{"service product", weight.Line{Product: service, Quantity: dec("3")}},
		{"zero quantity", weight.Line{Product: goods("Chair", "5", weight.KG), Quantity: decimal.Zero}},
		{"negative quantity", weight.Line{Product: goods("Chair", "5", weight.KG), Quantity: dec("-2")}},
		{"zero quantity without weight", weight.Line{Product: weight.Product{Name: "Bare", Type: weight.ProductGoods}, Quantity: decimal.Zero}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := weight.LineWeight(tt.line, weight.KG)
			require.NoError(t, err)
			assert.True(t, got.IsZero())
		})
	}
}

func TestLineWeight_MissingWeight(t *testing.T) {
	p := weight.Product{Name: "Mystery Box", Type: weight.ProductAssets}

	_, err := weight.LineWeight(weight.Line{Product: p, Quantity: dec("1")}, weight.KG)

	var weightErr *shipper.MissingWeightError
	require.ErrorAs(t, err, &weightErr)
	assert.Equal(t, "Mystery Box", weightErr.Product)

	p.Weight = decPtr("0")
	_, err = weight.LineWeight(weight.Line{Product: p, Quantity: dec("1")}, weight.KG)
	assert.ErrorAs(t, err, &weightErr)
}

func TestLineWeight_ConvertsQuantityAndWeight(t *testing.T) {
	line := weight.Line{
		Product:  goods("Mug", "250", weight.G),
		Quantity: dec("2"),
		Unit:     weight.Dozen,
	}

	got, err := weight.LineWeight(line, weight.KG)

	require.NoError(t, err)
	assert.True(t, dec("6").Equal(got), "24 mugs of 250 g, got %s", got)
}

func TestAggregate_CeilingOfSum(t *testing.T) {
	lines := []weight.Line{
		{Product: goods("Widget", "1.1", weight.LB), Quantity: dec("1")},
		{Product: goods("Gadget", "1.2", weight.LB), Quantity: dec("1")},
	}

	got, err := weight.Aggregate(lines, weight.LB)

	require.NoError(t, err)
	assert.True(t, dec("3").Equal(got), "ceil(2.3) = 3, got %s", got)
}

func TestAggregate_ExactIntegerUnchanged(t *testing.T) {
	lines := []weight.Line{
		{Product: goods("Half", "0.5", weight.KG), Quantity: dec("3")},
		{Product: goods("Grams", "500", weight.G), Quantity: dec("1")},
	}

	got, err := weight.Aggregate(lines, weight.KG)

	require.NoError(t, err)
	assert.True(t, dec("2").Equal(got), "got %s", got)
}

func TestAggregate_CrossUnit(t *testing.T) {
	lines := []weight.Line{
		{Product: goods("Box", "1", weight.KG), Quantity: dec("1")},
	}

	got, err := weight.Aggregate(lines, weight.LB)

	require.NoError(t, err)
	assert.True(t, dec("3").Equal(got), "1 kg is 2.2046 lb, got %s", got)
}

func TestAggregate_MissingWeightAborts(t *testing.T) {
	lines := []weight.Line{
		{Product: goods("Box", "1", weight.KG), Quantity: dec("1")},
		{Product: weight.Product{Name: "Lamp", Type: weight.ProductGoods}, Quantity: dec("1")},
	}

	_, err := weight.Aggregate(lines, weight.KG)

	var weightErr *shipper.MissingWeightError
	require.ErrorAs(t, err, &weightErr)
	assert.Equal(t, "Lamp", weightErr.Product)
}

func TestAggregate_Empty(t *testing.T) {
	got, err := weight.Aggregate(nil, weight.KG)

	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
