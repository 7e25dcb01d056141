// Package mock provides an in-memory shipping method store for tests and
// for running the service without a method file.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tournevent/bringrate/pkg/shipper"
)

// MethodStore keeps shipping methods in memory.
type MethodStore struct {
	mu      sync.RWMutex
	methods map[uuid.UUID]*shipper.ShippingMethod

	// OnGet, when set, replaces the lookup.
	OnGet func(ctx context.Context, id uuid.UUID) (*shipper.ShippingMethod, error)
}

// NewMethodStore creates a store holding the given methods.
func NewMethodStore(methods ...*shipper.ShippingMethod) *MethodStore {
	s := &MethodStore{methods: make(map[uuid.UUID]*shipper.ShippingMethod)}
	for _, m := range methods {
		s.Put(m)
	}
	return s
}

// Put adds or replaces a method.
func (s *MethodStore) Put(m *shipper.ShippingMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[m.ID] = m
}

// GetShippingMethod implements shipper.MethodStore.
func (s *MethodStore) GetShippingMethod(ctx context.Context, id uuid.UUID) (*shipper.ShippingMethod, error) {
	if s.OnGet != nil {
		return s.OnGet(ctx, id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.methods[id]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", shipper.ErrMethodNotFound, id)
}

// DemoMethodID is the id the service seeds ServicepakkeMethod under when it
// runs against the mock Bring client without a method file.
var DemoMethodID = uuid.MustParse("6f1d6a8e-3c55-4d0c-9a44-0f3b0c6b9a11")

// ServicepakkeMethod returns a ready-to-use Servicepakke method shipping from
// Oslo with a base price of 10 NOK.
func ServicepakkeMethod(id uuid.UUID) *shipper.ShippingMethod {
	return &shipper.ShippingMethod{
		ID: id,
		Rows: []shipper.ShippingMethodRow{
			{
				Name:        "bring-servicepakke",
				DisplayName: "Bring Servicepakke",
				Language:    "nb",
				BasePrice:   decimal.NewFromInt(10),
				Currency:    "NOK",
			},
		},
		MethodParameters: map[string]string{
			"BringProductId": "SERVICEPAKKE",
		},
		OptionParameters: map[string]string{
			"PostalCodeFrom": "0150",
			"CountryFrom":    "NOR",
		},
	}
}

var _ shipper.MethodStore = (*MethodStore)(nil)
