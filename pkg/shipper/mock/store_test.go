package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/bringrate/pkg/shipper"
	"github.com/tournevent/bringrate/pkg/shipper/mock"
)

func TestMethodStore_GetShippingMethod(t *testing.T) {
	id := uuid.New()
	store := mock.NewMethodStore(mock.ServicepakkeMethod(id))

	m, err := store.GetShippingMethod(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "SERVICEPAKKE", m.GetParameterValue("BringProductId", ""))

	_, err = store.GetShippingMethod(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shipper.ErrMethodNotFound)
}

func TestMethodStore_Put(t *testing.T) {
	id := uuid.New()
	store := mock.NewMethodStore()

	store.Put(mock.ServicepakkeMethod(id))

	_, err := store.GetShippingMethod(context.Background(), id)
	assert.NoError(t, err)
}

func TestMethodStore_OnGet(t *testing.T) {
	boom := errors.New("database down")
	store := mock.NewMethodStore(mock.ServicepakkeMethod(uuid.New()))
	store.OnGet = func(ctx context.Context, id uuid.UUID) (*shipper.ShippingMethod, error) {
		return nil, boom
	}

	_, err := store.GetShippingMethod(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
}
