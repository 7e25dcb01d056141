package main

import (
	"context"
	"errors"

	"github.com/tournevent/bringrate/internal/config"
	"github.com/tournevent/bringrate/internal/methodstore"
	"github.com/tournevent/bringrate/internal/telemetry"
	"github.com/tournevent/bringrate/pkg/shipper"
	"github.com/tournevent/bringrate/pkg/shipper/bring"
	"github.com/tournevent/bringrate/pkg/shipper/mock"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}

	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Attributes())
}

func initMethodStore(cfg *config.Config, logger *otelzap.Logger) (shipper.MethodStore, error) {
	if cfg.ShippingMethodsFile == "" {
		if !cfg.BringUseMock {
			return nil, errors.New("SHIPPING_METHODS_FILE is required unless BRING_USE_MOCK is set")
		}
		logger.Info("No shipping methods file, serving the demo Servicepakke method",
			zap.Stringer("method_id", mock.DemoMethodID),
		)
		return mock.NewMethodStore(mock.ServicepakkeMethod(mock.DemoMethodID)), nil
	}

	store, err := methodstore.Open(cfg.ShippingMethodsFile, logger)
	if err != nil {
		return nil, err
	}
	if cfg.ShippingMethodsWatch {
		store.Watch()
	}
	return store, nil
}

func initGateway(cfg *config.Config, methods shipper.MethodStore, logger *otelzap.Logger, tracer trace.Tracer) *bring.Gateway {
	return bring.New(bring.Config{
		APIUID:    cfg.BringAPIUID,
		APIKey:    cfg.BringAPIKey,
		ClientURL: cfg.BringClientURL,
		BaseURL:   cfg.BringBaseURL,
		Timeout:   cfg.BringTimeout,
		UseMock:   cfg.BringUseMock,
	}, methods, logger, tracer)
}
