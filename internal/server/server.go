package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/bringrate/internal/telemetry"
	"github.com/tournevent/bringrate/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Server is the HTTP server for the rate service.
type Server struct {
	port            int
	shutdownTimeout time.Duration
	gateway         shipper.Gateway
	logger          *otelzap.Logger
	metrics         *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port            int
	ShutdownTimeout time.Duration
}

// New creates a new server instance.
func New(cfg Config, gateway shipper.Gateway, logger *otelzap.Logger, metrics *telemetry.Metrics) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	return &Server{
		port:            cfg.Port,
		shutdownTimeout: cfg.ShutdownTimeout,
		gateway:         gateway,
		logger:          logger,
		metrics:         metrics,
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/rates", s.handleRates)

	return r
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type errorResponse struct {
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

type rateResponse struct {
	Rate RateResponse `json:"rate"`
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := DecodeRateRequest(r.Body)
	if err != nil {
		if details := ValidationDetails(err); details != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Request validation failed", Details: details})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}

	methodID, shipment, err := req.Resolve()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}

	start := time.Now()
	rate, message, err := s.gateway.GetRate(ctx, methodID, shipment)
	duration := time.Since(start).Seconds()

	switch {
	case err != nil:
		s.metrics.RecordLookup(telemetry.OutcomeFailed, duration)
		s.metrics.RecordError(errorType(err))
		s.logger.Ctx(ctx).Error("Rate lookup failed",
			zap.String("method_id", methodID.String()),
			zap.String("shipment_id", shipment.ID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusBadGateway, errorResponse{Message: err.Error()})
	case rate == nil:
		s.metrics.RecordLookup(telemetry.OutcomeRejected, duration)
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Message: message})
	default:
		s.metrics.RecordLookup(telemetry.OutcomePriced, duration)
		writeJSON(w, http.StatusOK, rateResponse{Rate: NewRateResponse(rate)})
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Ctx(r.Context()).Debug("Request served",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func errorType(err error) string {
	var ce *shipper.CarrierError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return "unknown"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
