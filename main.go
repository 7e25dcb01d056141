package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tournevent/bringrate/internal/server"
	"github.com/tournevent/bringrate/internal/telemetry"
	"github.com/tournevent/bringrate/pkg/shipper"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "bringrate",
	Short:   "Bring Shipping Guide rate service for e-commerce checkout",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP rate server",
	RunE:  runServe,
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price one shipment from a JSON rate request",
	RunE:  runQuote,
}

var quoteFile string

func init() {
	quoteCmd.Flags().StringVarP(&quoteFile, "file", "f", "-", "rate request JSON file, - for stdin")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(quoteCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize telemetry
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracer, tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(context.Background())
	}

	methods, err := initMethodStore(cfg, logger)
	if err != nil {
		return err
	}
	gateway := initGateway(cfg, methods, logger, tracer)

	logger.Info("Starting Bring rate service",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Bool("mock", cfg.BringUseMock),
	)

	// Start HTTP server
	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)
	srv := server.New(server.Config{Port: cfg.Port}, gateway, logger, metrics)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	methods, err := initMethodStore(cfg, logger)
	if err != nil {
		return err
	}
	gateway := initGateway(cfg, methods, logger, nil)

	var in io.Reader = cmd.InOrStdin()
	if quoteFile != "-" {
		f, err := os.Open(quoteFile)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	rate, message, err := quoteFrom(ctx, gateway, in)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if rate == nil {
		return enc.Encode(map[string]string{"message": message})
	}
	return enc.Encode(map[string]server.RateResponse{"rate": server.NewRateResponse(rate)})
}

// quoteFrom decodes one rate request from r and prices it.
func quoteFrom(ctx context.Context, gateway shipper.Gateway, r io.Reader) (*shipper.ShippingRate, string, error) {
	req, err := server.DecodeRateRequest(r)
	if err != nil {
		return nil, "", fmt.Errorf("reading rate request: %w", err)
	}
	methodID, shipment, err := req.Resolve()
	if err != nil {
		return nil, "", err
	}

	rate, message, err := gateway.GetRate(ctx, methodID, shipment)
	if err != nil {
		return nil, "", fmt.Errorf("rate lookup: %w", err)
	}
	return rate, message, nil
}
