package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.echo.GET("/", s.handleIndex)
	s.echo.POST("/upload", s.handleUpload)
	s.echo.GET("/images/:filename", s.handleImage)
	s.echo.GET("/qr/:filename", s.handleQR)
}
