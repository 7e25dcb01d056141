package bring

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MockAPIClient is a mock implementation of APIClient for testing and for
// running without Bring credentials.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnFind func(ctx context.Context, query *EstimateQuery) (*EstimateResult, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// Find returns a single Servicepakke-style estimate priced by weight.
func (m *MockAPIClient) Find(ctx context.Context, query *EstimateQuery) (*EstimateResult, error) {
	if m.SimulateLatency > 0 {
		select {
		case <-time.After(m.SimulateLatency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Message: "Simulated API error"}
	}

	if m.OnFind != nil {
		return m.OnFind(ctx, query)
	}

	product := query.Product
	if product.Code == "" {
		product = Servicepakke
	}

	// 99 NOK plus 10 NOK per started kilogram, 25% VAT.
	kilos := decimal.NewFromInt(int64(query.Package.WeightInGrams)).Div(gramsPerKilogram).Ceil()
	withoutVAT := decimal.NewFromInt(99).Add(kilos.Mul(decimal.NewFromInt(10)))
	vat := withoutVAT.Mul(decimal.RequireFromString("0.25"))
	price := Price{AmountWithoutVAT: withoutVAT, VAT: vat, AmountWithVAT: withoutVAT.Add(vat)}

	delivery := time.Now().AddDate(0, 0, 2).Truncate(24 * time.Hour)

	return NewSuccess(ShipmentEstimate{
		ProductID:                     product.Code,
		ProductCodeInProductionSystem: "1202",
		GuiInformation: GuiInformation{
			SortOrder:           1,
			MainDisplayCategory: "Pakke",
			DisplayName:         product.Name,
			ProductName:         product.Name,
			DescriptionText:     "Pakken kan spores og utleveres på ditt lokale hentested.",
			HelpText:            "Hentes på postkontor eller post i butikk.",
			MaxWeightInKgs:      decimal.NewFromInt(35),
		},
		PackagePrice: PackagePrice{
			CurrencyIdentificationCode:            "NOK",
			PackagePriceWithoutAdditionalServices: price,
			PackagePriceWithAdditionalServices:    price,
		},
		ExpectedDelivery: ExpectedDelivery{
			WorkingDays:                   2,
			FormattedExpectedDeliveryDate: delivery.Format("02.01.2006"),
			ExpectedDeliveryDate:          delivery,
		},
	}), nil
}

var _ APIClient = (*MockAPIClient)(nil)
