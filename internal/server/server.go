// Package server exposes the webhook pipeline over HTTP: webhook ingress,
// feedback ingest, aggregate metrics, Prometheus exposition, and health.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ledgersense/ledgersense/internal/router"
	"github.com/ledgersense/ledgersense/internal/service"
)

// defaultRequestTimeout caps one webhook request end to end: one primary
// classifier timeout plus the ledger calls, with headroom. The handler
// still answers when the deadline fires, reporting what is known.
const defaultRequestTimeout = 45 * time.Second

// Config holds the HTTP server settings.
type Config struct {
	Addr           string
	RequestTimeout time.Duration
}

// Server is the HTTP front of the categorization pipeline.
type Server struct {
	echo       *echo.Echo
	router     *router.Router
	store      service.MetricsStore
	classifier service.Classifier
	metrics    *Metrics
	logger     *slog.Logger
	addr       string
}

// requestValidator adapts go-playground/validator to echo's Validator
// interface, reporting field names by their json tags.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: v}
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// New creates the HTTP server. The classifier is only consulted for the
// health report; a nil classifier reports the model as unavailable.
func New(cfg Config, rt *router.Router, store service.MetricsStore, classifier service.Classifier, metrics *Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
			)
			return nil
		},
	}))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: timeout,
	}))

	s := &Server{
		echo:       e,
		router:     rt,
		store:      store,
		classifier: classifier,
		metrics:    metrics,
		logger:     logger,
		addr:       cfg.Addr,
	}

	e.POST("/webhook", s.handleWebhook)
	e.POST("/feedback", s.handleFeedback)
	e.GET("/api/metrics", s.handleMetrics)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", s.handleHealth)

	return s
}

// Start serves HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
