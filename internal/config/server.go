package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Server is the upload service configuration, read from the environment.
type Server struct {
	Port            string        `env:"PORT" default:"5000"`
	UploadDir       string        `env:"UPLOAD_DIR" default:"docs"`
	LogLevel        string        `env:"LOG_LEVEL" default:"info"`
	LogFormat       string        `env:"LOG_FORMAT" default:"text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LoadServer reads a .env file if present, then the process environment.
func LoadServer() (*Server, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}
	return loadServer(nil)
}

func loadServer(src env.Source) (*Server, error) {
	var cfg Server
	var opts *env.Options
	if src != nil {
		opts = &env.Options{Source: src}
	}
	if err := env.Load(&cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if cfg.UploadDir == "" {
		return nil, fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	return &cfg, nil
}
