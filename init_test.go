package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/bringrate/internal/config"
	"github.com/tournevent/bringrate/pkg/shipper/mock"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const demoShipment = `{
  "methodId": "6f1d6a8e-3c55-4d0c-9a44-0f3b0c6b9a11",
  "shipmentId": "s1",
  "orderGroup": {
    "addresses": [{"name": "home", "postalCode": "5003", "countryCode": "NO"}],
    "forms": [{
      "lineItems": [{"id": "li1", "quantity": 1, "weight": 2}],
      "shipments": [{"id": "s1", "shippingAddressId": "home", "lineItemQuantities": {"li1": 1}}]
    }]
  }
}`

func TestInitMethodStore_MockModeServesDemoMethod(t *testing.T) {
	logger := otelzap.New(zap.NewNop())
	cfg := &config.Config{BringUseMock: true}

	methods, err := initMethodStore(cfg, logger)
	require.NoError(t, err)

	_, err = methods.GetShippingMethod(context.Background(), mock.DemoMethodID)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path, []byte(demoShipment), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rate, message, err := quoteFrom(context.Background(), initGateway(cfg, methods, logger, nil), f)
	require.NoError(t, err)
	assert.Empty(t, message)
	require.NotNil(t, rate)
	assert.Equal(t, "NOK", rate.Money.Currency)
}

func TestInitMethodStore_RequiresFileWithoutMock(t *testing.T) {
	_, err := initMethodStore(&config.Config{}, otelzap.New(zap.NewNop()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHIPPING_METHODS_FILE")
}
