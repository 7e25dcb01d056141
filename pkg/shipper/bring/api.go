package bring

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// APIClient is the Bring Shipping Guide rate-estimation API.
type APIClient interface {
	// Find requests price estimates for the query. Rejected queries are
	// reported through EstimateResult.ErrorMessages; an error means no
	// answer was obtained at all.
	Find(ctx context.Context, query *EstimateQuery) (*EstimateResult, error)
}

// ShipmentLeg is the route of a package: origin and destination postal code
// and ISO 3166 alpha-2 country.
type ShipmentLeg struct {
	FromPostalCode string
	ToPostalCode   string
	FromCountry    string
	ToCountry      string
}

// PackageSize describes the package being priced.
type PackageSize struct {
	WeightInGrams int
}

// EstimateQuery is everything sent to the Shipping Guide for one estimate.
type EstimateQuery struct {
	Leg                   ShipmentLeg
	Package               PackageSize
	Edi                   bool
	ShippedFromPostOffice bool
	Product               Product
	AdditionalServices    []AdditionalService
}

// EstimateResult is either a set of estimates or the carrier's reasons for
// rejecting the query.
type EstimateResult struct {
	Success       bool
	Estimates     []ShipmentEstimate
	ErrorMessages []string
}

// ShipmentEstimate is one priced product.
type ShipmentEstimate struct {
	ProductID                     string
	ProductCodeInProductionSystem string
	GuiInformation                GuiInformation
	PackagePrice                  PackagePrice
	ExpectedDelivery              ExpectedDelivery
}

// GuiInformation holds the texts Bring recommends showing at checkout.
type GuiInformation struct {
	SortOrder           int
	MainDisplayCategory string
	SubDisplayCategory  string
	DisplayName         string
	ProductName         string
	DescriptionText     string
	HelpText            string
	Tip                 string
	MaxWeightInKgs      decimal.Decimal
}

// PackagePrice is the price of a package with and without the requested
// additional services.
type PackagePrice struct {
	CurrencyIdentificationCode            string
	PackagePriceWithoutAdditionalServices Price
	PackagePriceWithAdditionalServices    Price
}

// Price is an amount split into VAT components.
type Price struct {
	AmountWithoutVAT decimal.Decimal
	VAT              decimal.Decimal
	AmountWithVAT    decimal.Decimal
}

// ExpectedDelivery is the carrier's delivery promise.
type ExpectedDelivery struct {
	WorkingDays                   int
	UserMessage                   string
	FormattedExpectedDeliveryDate string
	ExpectedDeliveryDate          time.Time
}

// NewSuccess builds a successful result.
func NewSuccess(estimates ...ShipmentEstimate) *EstimateResult {
	return &EstimateResult{Success: true, Estimates: estimates}
}

// NewFailure builds a rejected result.
func NewFailure(messages ...string) *EstimateResult {
	return &EstimateResult{ErrorMessages: messages}
}

// APIError is a Shipping Guide response that is neither an estimate nor a
// business rejection.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}
