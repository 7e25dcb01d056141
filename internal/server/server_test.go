package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/bringrate/internal/server"
	"github.com/tournevent/bringrate/internal/telemetry"
	"github.com/tournevent/bringrate/pkg/shipper"
	"github.com/tournevent/bringrate/pkg/shipper/bring"
	"github.com/tournevent/bringrate/pkg/shipper/mock"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var methodID = uuid.MustParse("6f1d6a8e-3c55-4d0c-9a44-0f3b0c6b9a11")

const rateRequest = `{
  "methodId": "6f1d6a8e-3c55-4d0c-9a44-0f3b0c6b9a11",
  "shipmentId": "s1",
  "orderGroup": {
    "id": "cart-1",
    "addresses": [{"name": "home", "postalCode": "5003", "countryCode": "NOR"}],
    "forms": [{
      "id": "f1",
      "lineItems": [
        {"id": "li1", "code": "SKU-1", "quantity": 2, "weight": "1.5"},
        {"id": "li2", "code": "SKU-2", "quantity": 1, "weight": 3}
      ],
      "shipments": [{
        "id": "s1",
        "shippingAddressId": "home",
        "lineItemQuantities": {"li1": 2, "li2": 1}
      }]
    }]
  }
}`

type testServer struct {
	handler http.Handler
	api     *bring.MockAPIClient
	metrics *telemetry.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := otelzap.New(zap.NewNop())
	api := bring.NewMockAPIClient()
	store := mock.NewMethodStore(mock.ServicepakkeMethod(methodID))
	gateway := bring.NewWithAPIClient(bring.Config{}, api, store, logger, nil)
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())

	srv := server.New(server.Config{Port: 8080}, gateway, logger, metrics)
	return &testServer{handler: srv.Handler(), api: api, metrics: metrics}
}

func (ts *testServer) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/rates", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Rates_Priced(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.post(t, rateRequest)

	require.Equal(t, http.StatusOK, rec.Code)
	rate, ok := decode(t, rec)["rate"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, methodID.String(), rate["methodId"])
	// 6 kg: 159 + 25% VAT, plus the method's base price of 10.
	assert.Equal(t, "208.75", rate["amount"])
	assert.Equal(t, "NOK", rate["currency"])
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.RateLookups.WithLabelValues(telemetry.OutcomePriced)))
}

func TestServer_Rates_Rejected(t *testing.T) {
	ts := newTestServer(t)
	ts.api.OnFind = func(ctx context.Context, q *bring.EstimateQuery) (*bring.EstimateResult, error) {
		return bring.NewFailure("Invalid postal code", "Weight too high"), nil
	}

	rec := ts.post(t, rateRequest)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Invalid postal code\nWeight too high", decode(t, rec)["message"])
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.RateLookups.WithLabelValues(telemetry.OutcomeRejected)))
}

func TestServer_Rates_UnknownMethodIsRejected(t *testing.T) {
	ts := newTestServer(t)

	body := strings.Replace(rateRequest, methodID.String(), uuid.NewString(), 1)
	rec := ts.post(t, body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "could not be loaded")
}

func TestServer_Rates_TransportError(t *testing.T) {
	ts := newTestServer(t)
	ts.api.OnFind = func(ctx context.Context, q *bring.EstimateQuery) (*bring.EstimateResult, error) {
		return nil, shipper.NewCarrierError("bring", "HTTP_503", "unavailable").WithStatusCode(http.StatusServiceUnavailable)
	}

	rec := ts.post(t, rateRequest)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.RateLookups.WithLabelValues(telemetry.OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.CarrierErrors.WithLabelValues("HTTP_503")))
}

func TestServer_Rates_BadRequests(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "invalid json", body: "invalid json"},
		{name: "missing method", body: strings.Replace(rateRequest, `"methodId": "6f1d6a8e-3c55-4d0c-9a44-0f3b0c6b9a11",`, "", 1), field: "methodId"},
		{name: "malformed method", body: strings.Replace(rateRequest, "6f1d6a8e-3c55-4d0c-9a44-0f3b0c6b9a11", "nope", 1), field: "methodId"},
		{name: "negative weight", body: strings.Replace(rateRequest, `"weight": 3`, `"weight": -3`, 1), field: "orderGroup.forms[0].lineItems[1].weight"},
		{name: "bad country", body: strings.Replace(rateRequest, `"NOR"`, `"NORWAY"`, 1), field: "orderGroup.addresses[0].countryCode"},
		{name: "unknown shipment", body: strings.Replace(rateRequest, `"shipmentId": "s1"`, `"shipmentId": "s9"`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)

			rec := ts.post(t, tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decode(t, rec)
			assert.NotEmpty(t, resp["message"])
			if tt.field != "" {
				details, ok := resp["details"].([]interface{})
				require.True(t, ok)
				require.NotEmpty(t, details)
				assert.Equal(t, tt.field, details[0].(map[string]interface{})["field"])
			}
		})
	}
}

func TestServer_Rates_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/rates", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_Run_StopsOnCancel(t *testing.T) {
	logger := otelzap.New(zap.NewNop())
	store := mock.NewMethodStore()
	gateway := bring.NewWithAPIClient(bring.Config{}, bring.NewMockAPIClient(), store, logger, nil)
	srv := server.New(server.Config{Port: 0}, gateway, logger, telemetry.NewMetrics(prometheus.NewRegistry()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, srv.Run(ctx))
}
