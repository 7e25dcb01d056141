package bring

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tournevent/bringrate/pkg/shipper"
)

// DefaultBaseURL is the production Shipping Guide endpoint.
const DefaultBaseURL = "https://api.bring.com/shippingguide"

// HTTPAPIClient is the production implementation of APIClient.
type HTTPAPIClient struct {
	baseURL    string
	apiUID     string
	apiKey     string
	clientURL  string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL   string
	APIUID    string // Mybring login, sent as X-MyBring-API-Uid
	APIKey    string
	ClientURL string // identifies the web shop to Bring
	Timeout   time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &HTTPAPIClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiUID:    cfg.APIUID,
		apiKey:    cfg.APIKey,
		clientURL: cfg.ClientURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ============================================================================
// JSON response structures of the Shipping Guide products endpoint
// ============================================================================

type productsResponse struct {
	Product       []productResponse `json:"Product"`
	TraceMessages traceMessages     `json:"TraceMessages"`
}

type traceMessages struct {
	Message []string `json:"Message"`
}

type productResponse struct {
	ProductID                     string              `json:"ProductId"`
	ProductCodeInProductionSystem string              `json:"ProductCodeInProductionSystem"`
	GuiInformation                guiInformation      `json:"GuiInformation"`
	Price                         *priceResponse      `json:"Price"`
	ExpectedDelivery              expectedDelivery    `json:"ExpectedDelivery"`
	Errors                        []productFieldError `json:"Errors"`
}

type guiInformation struct {
	SortOrder           string `json:"SortOrder"`
	MainDisplayCategory string `json:"MainDisplayCategory"`
	SubDisplayCategory  string `json:"SubDisplayCategory"`
	DisplayName         string `json:"DisplayName"`
	ProductName         string `json:"ProductName"`
	DescriptionText     string `json:"DescriptionText"`
	HelpText            string `json:"HelpText"`
	Tip                 string `json:"Tip"`
	MaxWeightInKgs      string `json:"MaxWeightInKgs"`
}

type priceResponse struct {
	CurrencyIdentificationCode            string      `json:"currencyIdentificationCode"`
	PackagePriceWithoutAdditionalServices priceAmount `json:"PackagePriceWithoutAdditionalServices"`
	PackagePriceWithAdditionalServices    priceAmount `json:"PackagePriceWithAdditionalServices"`
}

type priceAmount struct {
	AmountWithoutVAT decimal.Decimal `json:"AmountWithoutVAT"`
	VAT              decimal.Decimal `json:"VAT"`
	AmountWithVAT    decimal.Decimal `json:"AmountWithVAT"`
}

type expectedDelivery struct {
	WorkingDays                   string       `json:"WorkingDays"`
	UserMessage                   string       `json:"UserMessage"`
	FormattedExpectedDeliveryDate string       `json:"FormattedExpectedDeliveryDate"`
	ExpectedDeliveryDate          deliveryDate `json:"ExpectedDeliveryDate"`
}

type deliveryDate struct {
	Year  string `json:"Year"`
	Month string `json:"Month"`
	Day   string `json:"Day"`
}

type productFieldError struct {
	Code        string `json:"Code"`
	Description string `json:"Description"`
}

// errorResponse is returned with 4xx statuses when the query itself is invalid.
type errorResponse struct {
	FieldErrors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"fieldErrors"`
	TraceMessages traceMessages `json:"TraceMessages"`
	Message       string        `json:"message"`
}

// ============================================================================
// API Implementation
// ============================================================================

// Find fetches price estimates from the Shipping Guide.
func (c *HTTPAPIClient) Find(ctx context.Context, query *EstimateQuery) (*EstimateResult, error) {
	resp, err := c.doRequest(ctx, "/products/all.json", encodeQuery(query, c.clientURL))
	if err != nil {
		return nil, shipper.NewCarrierError(carrierName, "TRANSPORT", "request failed").
			WithCause(err).
			WithRetryable(true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, shipper.NewCarrierError(carrierName, "TRANSPORT", "reading response failed").
			WithCause(err).
			WithStatusCode(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var products productsResponse
		if err := json.Unmarshal(body, &products); err != nil {
			return nil, fmt.Errorf("failed to decode products response: %w", err)
		}
		return convertProductsResponse(&products), nil

	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		if messages := parseRejection(body); len(messages) > 0 {
			return NewFailure(messages...), nil
		}
	}

	return nil, c.parseError(resp.StatusCode, body)
}

// encodeQuery maps the query onto the Shipping Guide's query string.
func encodeQuery(query *EstimateQuery, clientURL string) url.Values {
	v := url.Values{}
	if clientURL != "" {
		v.Set("clientUrl", clientURL)
	}
	v.Set("from", query.Leg.FromPostalCode)
	v.Set("to", query.Leg.ToPostalCode)
	v.Set("fromCountry", query.Leg.FromCountry)
	v.Set("toCountry", query.Leg.ToCountry)
	v.Set("weightInGrams", strconv.Itoa(query.Package.WeightInGrams))
	v.Set("edi", strconv.FormatBool(query.Edi))
	v.Set("postingAtPostoffice", strconv.FormatBool(query.ShippedFromPostOffice))
	if query.Product.Code != "" {
		v.Set("product", query.Product.Code)
	}
	for _, s := range query.AdditionalServices {
		v.Add("additional", s.Code)
	}
	return v
}

func convertProductsResponse(resp *productsResponse) *EstimateResult {
	estimates := make([]ShipmentEstimate, 0, len(resp.Product))
	var messages []string

	for _, p := range resp.Product {
		if p.Price == nil {
			for _, e := range p.Errors {
				messages = append(messages, e.Description)
			}
			continue
		}

		workingDays, _ := strconv.Atoi(p.ExpectedDelivery.WorkingDays)
		sortOrder, _ := strconv.Atoi(p.GuiInformation.SortOrder)
		maxWeight, _ := decimal.NewFromString(p.GuiInformation.MaxWeightInKgs)

		estimates = append(estimates, ShipmentEstimate{
			ProductID:                     p.ProductID,
			ProductCodeInProductionSystem: p.ProductCodeInProductionSystem,
			GuiInformation: GuiInformation{
				SortOrder:           sortOrder,
				MainDisplayCategory: p.GuiInformation.MainDisplayCategory,
				SubDisplayCategory:  p.GuiInformation.SubDisplayCategory,
				DisplayName:         p.GuiInformation.DisplayName,
				ProductName:         p.GuiInformation.ProductName,
				DescriptionText:     p.GuiInformation.DescriptionText,
				HelpText:            p.GuiInformation.HelpText,
				Tip:                 p.GuiInformation.Tip,
				MaxWeightInKgs:      maxWeight,
			},
			PackagePrice: PackagePrice{
				CurrencyIdentificationCode:            p.Price.CurrencyIdentificationCode,
				PackagePriceWithoutAdditionalServices: Price(p.Price.PackagePriceWithoutAdditionalServices),
				PackagePriceWithAdditionalServices:    Price(p.Price.PackagePriceWithAdditionalServices),
			},
			ExpectedDelivery: ExpectedDelivery{
				WorkingDays:                   workingDays,
				UserMessage:                   p.ExpectedDelivery.UserMessage,
				FormattedExpectedDeliveryDate: p.ExpectedDelivery.FormattedExpectedDeliveryDate,
				ExpectedDeliveryDate:          p.ExpectedDelivery.ExpectedDeliveryDate.time(),
			},
		})
	}

	if len(estimates) > 0 {
		return NewSuccess(estimates...)
	}
	if len(messages) == 0 {
		messages = resp.TraceMessages.Message
	}
	if len(messages) == 0 {
		messages = []string{MsgNoEstimates}
	}
	return NewFailure(messages...)
}

func (d deliveryDate) time() time.Time {
	t, err := time.Parse("2006-1-2", d.Year+"-"+d.Month+"-"+d.Day)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseRejection(body []byte) []string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return nil
	}
	var messages []string
	for _, fe := range errResp.FieldErrors {
		messages = append(messages, fe.Message)
	}
	if len(messages) == 0 {
		messages = errResp.TraceMessages.Message
	}
	return messages
}

// ============================================================================
// HTTP Helpers
// ============================================================================

func (c *HTTPAPIClient) doRequest(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiUID != "" {
		req.Header.Set("X-MyBring-API-Uid", c.apiUID)
	}
	if c.apiKey != "" {
		req.Header.Set("X-MyBring-API-Key", c.apiKey)
	}
	if c.clientURL != "" {
		req.Header.Set("X-Bring-Client-URL", c.clientURL)
	}

	return c.httpClient.Do(req)
}

// parseError turns an unexpected response into a CarrierError.
func (c *HTTPAPIClient) parseError(status int, body []byte) error {
	apiErr := &APIError{
		Code:    fmt.Sprintf("HTTP_%d", status),
		Message: strings.TrimSpace(string(body)),
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		apiErr.Message = errResp.Message
	}

	return shipper.NewCarrierError(carrierName, apiErr.Code, apiErr.Message).
		WithCause(apiErr).
		WithStatusCode(status)
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
