package shipper

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderAddress is an address attached to an order group. Shipments refer to
// it by Name.
type OrderAddress struct {
	Name        string
	FirstName   string
	LastName    string
	Line1       string
	Line2       string
	City        string
	PostalCode  string
	CountryCode string // free-form, ISO 3166 alpha-2 or alpha-3
	Email       string
	Phone       string
}

// LineItem is a purchased item on an order form.
type LineItem struct {
	ID          string
	Code        string
	DisplayName string
	Quantity    decimal.Decimal
	Weight      decimal.Decimal // kilograms per unit
}

// OrderGroup is the root of the order aggregate (cart, purchase order).
type OrderGroup struct {
	ID        string
	Addresses []OrderAddress
	Forms     []*OrderForm
}

// OrderForm groups line items and the shipments they are split into.
type OrderForm struct {
	ID        string
	LineItems []LineItem
	Shipments []*Shipment
	Parent    *OrderGroup
}

// Shipment is a part of an order form shipped to one address with one
// shipping method.
type Shipment struct {
	ID                 string
	ShippingMethodID   uuid.UUID
	ShippingAddressID  string // name of an OrderAddress in the order group
	LineItemQuantities map[string]decimal.Decimal
	Parent             *OrderForm
}

// ShipmentLineItem is a line item together with the quantity placed in a
// particular shipment.
type ShipmentLineItem struct {
	LineItem
	ShippedQuantity decimal.Decimal
}

// LineItems returns the order form's line items that have a positive
// quantity in this shipment, in order form order.
func (s *Shipment) LineItems() []ShipmentLineItem {
	if s == nil || s.Parent == nil {
		return nil
	}
	items := make([]ShipmentLineItem, 0, len(s.LineItemQuantities))
	for _, li := range s.Parent.LineItems {
		qty, ok := s.LineItemQuantities[li.ID]
		if !ok || !qty.IsPositive() {
			continue
		}
		items = append(items, ShipmentLineItem{LineItem: li, ShippedQuantity: qty})
	}
	return items
}

// OrderGroup walks shipment -> order form -> order group. It returns nil if
// either parent reference is missing.
func (s *Shipment) OrderGroup() *OrderGroup {
	if s == nil || s.Parent == nil {
		return nil
	}
	return s.Parent.Parent
}

// Address finds an address by name.
func (g *OrderGroup) Address(name string) (OrderAddress, bool) {
	for _, a := range g.Addresses {
		if a.Name == name {
			return a, true
		}
	}
	return OrderAddress{}, false
}

// Link sets the parent references of every form and shipment in the group.
// Aggregates decoded from JSON or YAML carry no back references until
// Link is called.
func (g *OrderGroup) Link() {
	for _, f := range g.Forms {
		f.Parent = g
		for _, s := range f.Shipments {
			s.Parent = f
		}
	}
}

// Shipment finds a shipment by id across all order forms.
func (g *OrderGroup) Shipment(id string) *Shipment {
	for _, f := range g.Forms {
		for _, s := range f.Shipments {
			if s.ID == id {
				return s
			}
		}
	}
	return nil
}

// ShippingMethodRow is one configuration row of a shipping method.
type ShippingMethodRow struct {
	Name        string
	DisplayName string
	Language    string
	BasePrice   decimal.Decimal
	Currency    string
}

// ShippingMethod is the host platform's shipping method definition: its
// configuration rows plus the method-level and option-level (gateway)
// parameters.
type ShippingMethod struct {
	ID               uuid.UUID
	Rows             []ShippingMethodRow
	MethodParameters map[string]string
	OptionParameters map[string]string
}

// MethodParameter returns a method-level parameter.
func (m *ShippingMethod) MethodParameter(name string) (string, bool) {
	v, ok := m.MethodParameters[name]
	return v, ok
}

// OptionParameter returns a parameter of the shipping option the method
// belongs to.
func (m *ShippingMethod) OptionParameter(name string) (string, bool) {
	v, ok := m.OptionParameters[name]
	return v, ok
}

// GetParameterValue returns the method-level parameter or def if it is not set.
func (m *ShippingMethod) GetParameterValue(name, def string) string {
	if v, ok := m.MethodParameter(name); ok {
		return v
	}
	return def
}

// Money represents a monetary amount.
type Money struct {
	Amount   decimal.Decimal
	Currency string // ISO 4217
}

// ShippingRate is the price and display information the host platform
// shows for a shipping method at checkout.
type ShippingRate struct {
	MethodID             uuid.UUID
	Name                 string
	MainDisplayCategory  string
	SubDisplayCategory   string
	Description          string
	HelpText             string
	Tip                  string
	ExpectedDeliveryDate time.Time
	Money                Money
}
