// Package server exposes the upload store over HTTP.
package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ivlev/alertkit/internal/config"
	"github.com/ivlev/alertkit/internal/metrics"
	"github.com/ivlev/alertkit/internal/upload"
)

//go:embed templates/*.html
var templateFS embed.FS

// Alerts are the generated files linked from the landing page when present.
var Alerts = []string{
	"decommission_alert.gif",
	"decommission_alert_banner.jpg",
}

type Server struct {
	echo      *echo.Echo
	config    *config.Server
	store     *upload.Store
	logger    *slog.Logger
	index     *template.Template
	startTime time.Time
}

func NewServer(cfg *config.Server, store *upload.Store, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	index, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(logger))
	e.Use(observeDuration)

	srv := &Server{
		echo:      e,
		config:    cfg,
		store:     store,
		logger:    logger,
		index:     index,
		startTime: time.Now(),
	}
	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) Start() error {
	s.logger.Info("Starting server", "port", s.config.Port, "upload_dir", s.store.Dir())
	return s.echo.Start(":" + s.config.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				logger.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	})
}

func observeDuration(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		status := c.Response().Status
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}
