package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tournevent/bringrate/pkg/shipper"
)

// ErrUnknownShipment is returned when the requested shipment is not part of
// the submitted order group.
var ErrUnknownShipment = errors.New("shipment not found in order group")

// RateRequest asks for the rate of one shipment of an order group.
type RateRequest struct {
	MethodID   string          `json:"methodId" validate:"required,uuid"`
	ShipmentID string          `json:"shipmentId" validate:"required"`
	OrderGroup OrderGroupInput `json:"orderGroup" validate:"required"`
}

// OrderGroupInput is the order group a rate request is priced against.
type OrderGroupInput struct {
	ID        string           `json:"id"`
	Addresses []AddressInput   `json:"addresses" validate:"dive"`
	Forms     []OrderFormInput `json:"forms" validate:"required,min=1,dive"`
}

// AddressInput is an order group address.
type AddressInput struct {
	Name        string `json:"name" validate:"required"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode" validate:"omitempty,max=16"`
	CountryCode string `json:"countryCode" validate:"omitempty,alpha,min=2,max=3"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
}

// OrderFormInput is an order form with its line items and shipments.
type OrderFormInput struct {
	ID        string          `json:"id"`
	LineItems []LineItemInput `json:"lineItems" validate:"dive"`
	Shipments []ShipmentInput `json:"shipments" validate:"dive"`
}

// LineItemInput is a line item; Weight is kilograms per unit.
type LineItemInput struct {
	ID          string          `json:"id" validate:"required"`
	Code        string          `json:"code"`
	DisplayName string          `json:"displayName"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gte=0"`
	Weight      decimal.Decimal `json:"weight" validate:"gte=0"`
}

// ShipmentInput is a shipment with its line item quantities keyed by line item id.
type ShipmentInput struct {
	ID                 string                     `json:"id" validate:"required"`
	ShippingMethodID   string                     `json:"shippingMethodId" validate:"omitempty,uuid"`
	ShippingAddressID  string                     `json:"shippingAddressId"`
	LineItemQuantities map[string]decimal.Decimal `json:"lineItemQuantities"`
}

// DecodeRateRequest reads and validates a JSON rate request.
func DecodeRateRequest(r io.Reader) (*RateRequest, error) {
	var req RateRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Resolve builds the order aggregate and returns the method id and the
// requested shipment, linked to its order form and order group.
func (r *RateRequest) Resolve() (uuid.UUID, *shipper.Shipment, error) {
	methodID, err := uuid.Parse(r.MethodID)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("invalid methodId: %w", err)
	}

	group := r.OrderGroup.toModel()
	group.Link()

	shipment := group.Shipment(r.ShipmentID)
	if shipment == nil {
		return uuid.Nil, nil, fmt.Errorf("%w: %s", ErrUnknownShipment, r.ShipmentID)
	}
	return methodID, shipment, nil
}

func (g OrderGroupInput) toModel() *shipper.OrderGroup {
	group := &shipper.OrderGroup{ID: g.ID}
	for _, a := range g.Addresses {
		group.Addresses = append(group.Addresses, shipper.OrderAddress{
			Name:        a.Name,
			FirstName:   a.FirstName,
			LastName:    a.LastName,
			Line1:       a.Line1,
			Line2:       a.Line2,
			City:        a.City,
			PostalCode:  a.PostalCode,
			CountryCode: a.CountryCode,
			Email:       a.Email,
			Phone:       a.Phone,
		})
	}
	for _, f := range g.Forms {
		form := &shipper.OrderForm{ID: f.ID}
		for _, li := range f.LineItems {
			form.LineItems = append(form.LineItems, shipper.LineItem{
				ID:          li.ID,
				Code:        li.Code,
				DisplayName: li.DisplayName,
				Quantity:    li.Quantity,
				Weight:      li.Weight,
			})
		}
		for _, s := range f.Shipments {
			shipment := &shipper.Shipment{
				ID:                 s.ID,
				ShippingAddressID:  s.ShippingAddressID,
				LineItemQuantities: s.LineItemQuantities,
			}
			if s.ShippingMethodID != "" {
				shipment.ShippingMethodID = uuid.MustParse(s.ShippingMethodID)
			}
			form.Shipments = append(form.Shipments, shipment)
		}
		group.Forms = append(group.Forms, form)
	}
	return group
}

// RateResponse is the JSON form of a shipping rate.
type RateResponse struct {
	MethodID             string          `json:"methodId"`
	Name                 string          `json:"name"`
	MainDisplayCategory  string          `json:"mainDisplayCategory,omitempty"`
	SubDisplayCategory   string          `json:"subDisplayCategory,omitempty"`
	Description          string          `json:"description,omitempty"`
	HelpText             string          `json:"helpText,omitempty"`
	Tip                  string          `json:"tip,omitempty"`
	ExpectedDeliveryDate *time.Time      `json:"expectedDeliveryDate,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
}

// NewRateResponse converts a shipping rate to its JSON form.
func NewRateResponse(rate *shipper.ShippingRate) RateResponse {
	resp := RateResponse{
		MethodID:            rate.MethodID.String(),
		Name:                rate.Name,
		MainDisplayCategory: rate.MainDisplayCategory,
		SubDisplayCategory:  rate.SubDisplayCategory,
		Description:         rate.Description,
		HelpText:            rate.HelpText,
		Tip:                 rate.Tip,
		Amount:              rate.Money.Amount,
		Currency:            rate.Money.Currency,
	}
	if !rate.ExpectedDeliveryDate.IsZero() {
		d := rate.ExpectedDeliveryDate
		resp.ExpectedDeliveryDate = &d
	}
	return resp
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationDetails lists the failed rules of a validation error, or nil
// if err is not one.
func ValidationDetails(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		field := e.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		details = append(details, FieldError{Field: field, Rule: e.Tag()})
	}
	return details
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	return v
}
