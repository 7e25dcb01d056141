package methodstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/bringrate/internal/methodstore"
	"github.com/tournevent/bringrate/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const methodsYAML = `
methods:
  - id: 6f1d6a8e-3c55-4d0c-9a44-0f3b0c6b9a11
    rows:
      - name: bring-servicepakke
        displayName: Bring Servicepakke
        language: nb
        basePrice: "10.00"
        currency: NOK
    parameters:
      - name: BringProductId
        value: SERVICEPAKKE
      - name: PriceRounding
        value: "true"
    optionParameters:
      - name: PostalCodeFrom
        value: "0150"
      - name: CountryFrom
        value: NOR
  - id: 0b8f2c1e-7a9d-4e2b-8c3f-5d6e7f8a9b0c
`

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func newLogger() *otelzap.Logger {
	return otelzap.New(zap.NewNop())
}

func TestOpen_YAML(t *testing.T) {
	store, err := methodstore.Open(writeFile(t, "methods.yaml", methodsYAML), newLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())

	m, err := store.GetShippingMethod(context.Background(), uuid.MustParse("6f1d6a8e-3c55-4d0c-9a44-0f3b0c6b9a11"))
	require.NoError(t, err)
	require.Len(t, m.Rows, 1)
	assert.True(t, m.Rows[0].BasePrice.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "NOK", m.Rows[0].Currency)
	assert.Equal(t, "SERVICEPAKKE", m.GetParameterValue("BringProductId", ""))
	assert.Equal(t, "true", m.GetParameterValue("PriceRounding", "false"))

	v, ok := m.OptionParameter("PostalCodeFrom")
	assert.True(t, ok)
	assert.Equal(t, "0150", v)

	empty, err := store.GetShippingMethod(context.Background(), uuid.MustParse("0b8f2c1e-7a9d-4e2b-8c3f-5d6e7f8a9b0c"))
	require.NoError(t, err)
	assert.Empty(t, empty.Rows)
}

func TestOpen_JSON(t *testing.T) {
	path := writeFile(t, "methods.json", `{"methods":[{"id":"6f1d6a8e-3c55-4d0c-9a44-0f3b0c6b9a11","rows":[{"name":"x","basePrice":"12.5","currency":"NOK"}]}]}`)

	store, err := methodstore.Open(path, newLogger())
	require.NoError(t, err)

	m, err := store.GetShippingMethod(context.Background(), uuid.MustParse("6f1d6a8e-3c55-4d0c-9a44-0f3b0c6b9a11"))
	require.NoError(t, err)
	assert.True(t, m.Rows[0].BasePrice.Equal(decimal.RequireFromString("12.5")))
}

func TestGetShippingMethod_NotFound(t *testing.T) {
	store, err := methodstore.Open(writeFile(t, "methods.yaml", methodsYAML), newLogger())
	require.NoError(t, err)

	_, err = store.GetShippingMethod(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shipper.ErrMethodNotFound)
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"invalid id", "methods:\n  - id: not-a-uuid\n"},
		{"duplicate id", "methods:\n  - id: 6f1d6a8e-3c55-4d0c-9a44-0f3b0c6b9a11\n  - id: 6f1d6a8e-3c55-4d0c-9a44-0f3b0c6b9a11\n"},
		{"invalid price", "methods:\n  - id: 6f1d6a8e-3c55-4d0c-9a44-0f3b0c6b9a11\n    rows:\n      - basePrice: ten\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := methodstore.Open(writeFile(t, "methods.yaml", tt.contents), newLogger())
			assert.Error(t, err)
		})
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := methodstore.Open(filepath.Join(t.TempDir(), "nope.yaml"), newLogger())
	assert.Error(t, err)
}

func TestReload_KeepsMethodsOnError(t *testing.T) {
	path := writeFile(t, "methods.yaml", methodsYAML)
	store, err := methodstore.Open(path, newLogger())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("methods:\n  - id: broken\n"), 0o600))
	assert.Error(t, store.Reload())
	assert.Equal(t, 2, store.Len())
}
