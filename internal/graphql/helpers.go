package graphql

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tournevent/ups/internal/graphql/generated"
	"github.com/tournevent/ups/internal/shipping"
	"github.com/tournevent/ups/internal/store"
	"github.com/tournevent/ups/pkg/shipper"
	"github.com/tournevent/ups/pkg/shipper/weight"
)

// inputError reports an argument that could not be turned into a domain value.
type inputError struct {
	field string
	err   error
}

func (e *inputError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.field, e.err)
}

func (e *inputError) Unwrap() error {
	return e.err
}

func orderInputToModel(input generated.OrderInput) (shipping.Order, error) {
	lines, err := linesInputToModel("lines", input.Lines)
	if err != nil {
		return shipping.Order{}, err
	}
	order := shipping.Order{
		ID:               input.ID,
		Carrier:          deref(input.Carrier),
		Company:          companyInputToModel(input.Company),
		Warehouse:        addressInputToModel(input.Warehouse),
		ShipmentAddress:  addressInputToModel(input.ShipmentAddress),
		Lines:            lines,
		ServiceCode:      deref(input.ServiceCode),
		PackageType:      deref(input.PackageType),
		SaturdayDelivery: input.SaturdayDelivery != nil && *input.SaturdayDelivery,
	}
	return order, nil
}

func shipmentInputToModel(input generated.ShipmentInput) (shipping.Shipment, error) {
	moves, err := linesInputToModel("moves", input.Moves)
	if err != nil {
		return shipping.Shipment{}, err
	}
	shipment := shipping.Shipment{
		ID:               input.ID,
		State:            shipping.State(strings.ToLower(input.State.String())),
		Carrier:          input.Carrier,
		Company:          companyInputToModel(input.Company),
		Warehouse:        addressInputToModel(input.Warehouse),
		DeliveryAddress:  addressInputToModel(input.DeliveryAddress),
		Moves:            moves,
		ServiceCode:      deref(input.ServiceCode),
		PackageType:      deref(input.PackageType),
		SaturdayDelivery: input.SaturdayDelivery != nil && *input.SaturdayDelivery,
		TrackingNumber:   deref(input.TrackingNumber),
	}
	return shipment, nil
}

func addressInputToModel(input *generated.AddressInput) shipper.Address {
	if input == nil {
		return shipper.Address{}
	}
	addr := shipper.Address{
		Name:            deref(input.Name),
		Street:          deref(input.Street),
		Street2:         deref(input.Street2),
		City:            deref(input.City),
		CountryCode:     deref(input.CountryCode),
		SubdivisionCode: deref(input.SubdivisionCode),
		PostalCode:      deref(input.PostalCode),
	}
	if input.Party != nil {
		addr.Party = shipper.Party{
			Name:               input.Party.Name,
			Phone:              deref(input.Party.Phone),
			Fax:                deref(input.Party.Fax),
			Email:              deref(input.Party.Email),
			TaxID:              deref(input.Party.TaxID),
			TaxExemptionNumber: deref(input.Party.TaxExemptionNumber),
		}
	}
	return addr
}

func companyInputToModel(input *generated.CompanyInput) *shipper.Company {
	if input == nil {
		return nil
	}
	return &shipper.Company{Name: input.Name, TaxID: deref(input.TaxID)}
}

func linesInputToModel(field string, inputs []*generated.LineInput) ([]weight.Line, error) {
	lines := make([]weight.Line, 0, len(inputs))
	for i, input := range inputs {
		if input == nil || input.Product == nil {
			continue
		}
		name := fmt.Sprintf("%s[%d]", field, i)

		product, err := productInputToModel(name, input.Product)
		if err != nil {
			return nil, err
		}
		qty, err := decimal.NewFromString(strings.TrimSpace(input.Quantity))
		if err != nil {
			return nil, &inputError{field: name + ".quantity", err: err}
		}
		unit, err := unitInputToModel(name+".unit", input.Unit)
		if err != nil {
			return nil, err
		}

		lines = append(lines, weight.Line{Product: product, Quantity: qty, Unit: unit})
	}
	return lines, nil
}

func productInputToModel(field string, input *generated.ProductInput) (weight.Product, error) {
	product := weight.Product{
		Name: input.Name,
		Type: weight.ProductType(strings.ToLower(input.Type.String())),
	}
	if product.Type == "" {
		product.Type = weight.ProductGoods
	}

	var err error
	if product.DefaultUnit, err = unitInputToModel(field+".product.defaultUnit", input.DefaultUnit); err != nil {
		return weight.Product{}, err
	}

	if input.Weight == nil || *input.Weight == "" {
		return product, nil
	}
	w, err := decimal.NewFromString(strings.TrimSpace(*input.Weight))
	if err != nil {
		return weight.Product{}, &inputError{field: field + ".product.weight", err: err}
	}
	if input.WeightUnit == nil || *input.WeightUnit == "" {
		return weight.Product{}, &inputError{field: field + ".product.weightUnit", err: fmt.Errorf("required when weight is set")}
	}
	if product.WeightUnit, err = unitInputToModel(field+".product.weightUnit", input.WeightUnit); err != nil {
		return weight.Product{}, err
	}
	product.Weight = &w
	return product, nil
}

func unitInputToModel(field string, symbol *string) (weight.Unit, error) {
	if symbol == nil || *symbol == "" {
		return weight.Unit{}, nil
	}
	u, err := weight.Lookup(*symbol)
	if err != nil {
		return weight.Unit{}, &inputError{field: field, err: err}
	}
	return u, nil
}

func moneyToGraphQL(m shipper.Money) *generated.Money {
	return &generated.Money{
		Amount:   m.Amount.StringFixed(shipper.CurrencyScale(m.Currency)),
		Currency: m.Currency,
	}
}

func rateToGraphQL(q shipper.RateQuote) *generated.RateQuote {
	rate := &generated.RateQuote{
		Carrier:                  q.Carrier,
		ServiceCode:              q.ServiceCode,
		DisplayName:              q.DisplayName,
		Cost:                     moneyToGraphQL(q.Cost),
		GuaranteedDaysToDelivery: q.Metadata.GuaranteedDaysToDelivery,
	}
	if q.Metadata.ScheduledDeliveryTime != "" {
		t := q.Metadata.ScheduledDeliveryTime
		rate.ScheduledDeliveryTime = &t
	}
	return rate
}

func shippingLineToGraphQL(line *shipping.ShippingLine) *generated.ShippingLine {
	if line == nil {
		return nil
	}
	return &generated.ShippingLine{
		Carrier:     line.Carrier,
		ServiceCode: line.ServiceCode,
		Description: line.Description,
		Cost:        moneyToGraphQL(line.Cost),
	}
}

func labelToGraphQL(rec *store.LabelRecord, atts []store.Attachment) *generated.Label {
	if rec == nil {
		return nil
	}
	label := &generated.Label{
		ShipmentID:                   rec.ShipmentID,
		Carrier:                      rec.Carrier,
		TrackingNumber:               rec.TrackingNumber,
		ShipmentIdentificationNumber: rec.ShipmentIdentificationNumber,
		Cost:                         moneyToGraphQL(shipper.RoundMoney(rec.Cost, rec.Currency)),
		Attachments:                  make([]*generated.Attachment, len(atts)),
	}
	for i, att := range atts {
		label.Attachments[i] = &generated.Attachment{
			ID:          att.ID,
			Name:        att.Name,
			ContentType: att.ContentType,
			Size:        len(att.Data),
			Data:        base64.StdEncoding.EncodeToString(att.Data),
		}
	}
	return label
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
