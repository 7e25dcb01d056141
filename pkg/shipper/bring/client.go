// Package bring prices shipments with the Bring Shipping Guide API.
package bring

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tournevent/bringrate/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "bring"

// Messages returned by GetRate when no rate can be produced.
const (
	MsgShipmentAddressNotFound       = "The shipment address not found in order group."
	MsgOrderFormOrOrderGroupNotFound = "The order form or order group not found for shipment."
	MsgShippingMethodNotLoaded       = "The shipping method could not be loaded by '%s' id."
	MsgShipmentContainsNoLineItems   = "The shipment doesn't contain any line items."
	MsgNoEstimates                   = "The carrier returned no estimates for the shipment."
	MsgCarrierRejected               = "The carrier rejected the shipment."
)

// Config holds Bring configuration.
type Config struct {
	APIUID    string
	APIKey    string
	ClientURL string
	BaseURL   string
	Timeout   time.Duration
	UseMock   bool
}

// Gateway is the Bring shipping gateway. It is safe for concurrent use.
type Gateway struct {
	config    Config
	apiClient APIClient
	methods   shipper.MethodStore
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a gateway talking to the Shipping Guide over HTTP, or to an
// in-process mock when cfg.UseMock is set.
func New(cfg Config, methods shipper.MethodStore, logger *otelzap.Logger, tracer trace.Tracer) *Gateway {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:   cfg.BaseURL,
			APIUID:    cfg.APIUID,
			APIKey:    cfg.APIKey,
			ClientURL: cfg.ClientURL,
			Timeout:   cfg.Timeout,
		})
	}

	return NewWithAPIClient(cfg, apiClient, methods, logger, tracer)
}

// NewWithAPIClient creates a gateway with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, methods shipper.MethodStore, logger *otelzap.Logger, tracer trace.Tracer) *Gateway {
	if tracer == nil {
		tracer = otel.Tracer("github.com/tournevent/bringrate/pkg/shipper/bring")
	}
	return &Gateway{
		config:    cfg,
		apiClient: apiClient,
		methods:   methods,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the carrier name.
func (g *Gateway) Name() string {
	return carrierName
}

// GetRate prices the shipment with the given shipping method.
//
// It returns a rate, or a message describing why the shipment could not be
// priced. A nil shipment yields neither. Errors are reserved for failures to
// reach the Shipping Guide and are never retried.
func (g *Gateway) GetRate(ctx context.Context, methodID uuid.UUID, shipment *shipper.Shipment) (*shipper.ShippingRate, string, error) {
	if shipment == nil {
		return nil, "", nil
	}

	ctx, span := g.tracer.Start(ctx, "bring.GetRate", trace.WithAttributes(
		attribute.String("shipping_method.id", methodID.String()),
		attribute.String("shipment.id", shipment.ID),
	))
	defer span.End()

	log := g.logger.Ctx(ctx)

	method, err := g.methods.GetShippingMethod(ctx, methodID)
	if err != nil && !errors.Is(err, shipper.ErrMethodNotFound) {
		log.Warn("Loading shipping method failed", zap.Stringer("method_id", methodID), zap.Error(err))
	}
	if err != nil || method == nil || len(method.Rows) == 0 {
		return g.reject(ctx, span, fmt.Sprintf(MsgShippingMethodNotLoaded, methodID))
	}

	items := shipment.LineItems()
	if len(items) == 0 {
		return g.reject(ctx, span, MsgShipmentContainsNoLineItems)
	}

	group := shipment.OrderGroup()
	if group == nil {
		return g.reject(ctx, span, MsgOrderFormOrOrderGroupNotFound)
	}

	address, ok := group.Address(shipment.ShippingAddressID)
	if !ok {
		return g.reject(ctx, span, MsgShipmentAddressNotFound)
	}

	query := g.buildQuery(ctx, method, address, items)

	log.Info("Getting Bring estimate",
		zap.Stringer("method_id", methodID),
		zap.String("origin_postal", query.Leg.FromPostalCode),
		zap.String("destination_postal", query.Leg.ToPostalCode),
		zap.String("destination_country", query.Leg.ToCountry),
		zap.Int("weight_grams", query.Package.WeightInGrams),
		zap.String("product", query.Product.Code),
	)

	result, err := g.apiClient.Find(ctx, query)
	if err != nil {
		log.Error("Bring API error", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, "", err
	}

	if result == nil {
		return g.reject(ctx, span, MsgNoEstimates)
	}
	if !result.Success {
		return g.reject(ctx, span, joinMessages(result.ErrorMessages))
	}
	if len(result.Estimates) == 0 {
		return g.reject(ctx, span, MsgNoEstimates)
	}

	rate := g.createShippingRate(ctx, methodID, method, result.Estimates[0])
	span.SetAttributes(
		attribute.String("rate.amount", rate.Money.Amount.String()),
		attribute.String("rate.currency", rate.Money.Currency),
	)
	return rate, "", nil
}

func (g *Gateway) reject(ctx context.Context, span trace.Span, message string) (*shipper.ShippingRate, string, error) {
	g.logger.Ctx(ctx).Warn("Shipment could not be priced", zap.String("reason", message))
	span.SetAttributes(attribute.String("rate.rejected", message))
	return nil, message, nil
}

// joinMessages joins the non-blank carrier messages, one per line.
func joinMessages(messages []string) string {
	kept := make([]string, 0, len(messages))
	for _, m := range messages {
		if m = strings.TrimSpace(m); m != "" {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return MsgCarrierRejected
	}
	return strings.Join(kept, "\n")
}

func (g *Gateway) buildQuery(ctx context.Context, method *shipper.ShippingMethod, address shipper.OrderAddress, items []shipper.ShipmentLineItem) *EstimateQuery {
	return &EstimateQuery{
		Leg:                   createShipmentLeg(address, method),
		Package:               createPackageSize(items),
		Edi:                   g.flag(ctx, method, ParamEdi, DefaultEdi),
		ShippedFromPostOffice: g.flag(ctx, method, ParamPostingAtPostOffice, DefaultPostOffice),
		Product:               g.product(ctx, method),
		AdditionalServices:    ParseAdditionalServices(resolveParameter(ParamAdditionalServices, "", methodThenOption(method)...)),
	}
}

func createShipmentLeg(address shipper.OrderAddress, method *shipper.ShippingMethod) ShipmentLeg {
	sources := methodThenOption(method)
	return ShipmentLeg{
		FromPostalCode: resolveParameter(ParamPostalCodeFrom, "", sources...),
		ToPostalCode:   strings.TrimSpace(address.PostalCode),
		FromCountry:    ToISO2CountryCode(resolveParameter(ParamCountryFrom, DefaultCountryFrom, sources...)),
		ToCountry:      ToISO2CountryCode(address.CountryCode),
	}
}

var gramsPerKilogram = decimal.NewFromInt(1000)

// createPackageSize sums unit weight times shipped quantity and converts
// kilograms to whole grams, truncating.
func createPackageSize(items []shipper.ShipmentLineItem) PackageSize {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Weight.Mul(item.ShippedQuantity))
	}
	return PackageSize{WeightInGrams: int(total.Mul(gramsPerKilogram).IntPart())}
}

// flag parses a boolean parameter. Values strconv.ParseBool does not accept
// fall back to def.
func (g *Gateway) flag(ctx context.Context, method *shipper.ShippingMethod, name string, def bool) bool {
	raw := resolveParameter(name, strconv.FormatBool(def), methodThenOption(method)...)
	v, err := strconv.ParseBool(raw)
	if err != nil {
		g.logger.Ctx(ctx).Warn("Invalid boolean shipping method parameter",
			zap.Stringer("method_id", method.ID),
			zap.String("parameter", name),
			zap.String("value", raw),
			zap.Bool("default", def),
		)
		return def
	}
	return v
}

func (g *Gateway) product(ctx context.Context, method *shipper.ShippingMethod) Product {
	code := resolveParameter(ParamProductID, Servicepakke.Code, methodThenOption(method)...)
	if p, ok := ProductByCode(code); ok {
		return p
	}
	g.logger.Ctx(ctx).Warn("Unknown Bring product, sending code as configured",
		zap.Stringer("method_id", method.ID),
		zap.String("product", code),
	)
	return Product{Code: code}
}

func (g *Gateway) createShippingRate(ctx context.Context, methodID uuid.UUID, method *shipper.ShippingMethod, estimate ShipmentEstimate) *shipper.ShippingRate {
	gui := estimate.GuiInformation
	amount := g.adjustPrice(ctx, method, estimate.PackagePrice.PackagePriceWithAdditionalServices.AmountWithVAT)

	currencyCode := estimate.PackagePrice.CurrencyIdentificationCode
	if strings.TrimSpace(currencyCode) == "" {
		currencyCode = method.Rows[0].Currency
	}

	return &shipper.ShippingRate{
		MethodID:             methodID,
		Name:                 gui.DisplayName,
		MainDisplayCategory:  gui.MainDisplayCategory,
		SubDisplayCategory:   gui.SubDisplayCategory,
		Description:          gui.DescriptionText,
		HelpText:             gui.HelpText,
		Tip:                  gui.Tip,
		ExpectedDeliveryDate: estimate.ExpectedDelivery.ExpectedDeliveryDate,
		Money: shipper.Money{
			Amount:   amount,
			Currency: normalizeCurrency(currencyCode),
		},
	}
}

// adjustPrice adds the method's base price to the carrier price and, when
// the method asks for it, rounds to a whole unit with halves away from zero.
func (g *Gateway) adjustPrice(ctx context.Context, method *shipper.ShippingMethod, price decimal.Decimal) decimal.Decimal {
	amount := method.Rows[0].BasePrice.Add(price)
	if g.flag(ctx, method, ParamPriceRounding, DefaultRounding) {
		return amount.Round(0)
	}
	return amount
}

var _ shipper.Gateway = (*Gateway)(nil)
