package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ivlev/alertkit/internal/config"
	"github.com/ivlev/alertkit/internal/logging"
	"github.com/ivlev/alertkit/internal/server"
	"github.com/ivlev/alertkit/internal/upload"
)

func serveCmd() *cobra.Command {
	var port, uploadDir string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the image upload service",
		Long:  "Run the image upload service. Settings come from the environment (PORT, UPLOAD_DIR, LOG_LEVEL, LOG_FORMAT) or a .env file; flags take precedence.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadServer()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("upload-dir") {
				cfg.UploadDir = uploadDir
			}
			if root := cmd.Root().PersistentFlags(); root.Changed("log-level") {
				cfg.LogLevel, _ = root.GetString("log-level")
			}
			if root := cmd.Root().PersistentFlags(); root.Changed("log-format") {
				cfg.LogFormat, _ = root.GetString("log-format")
			}

			logger := logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

			store, err := upload.NewStore(cfg.UploadDir)
			if err != nil {
				return err
			}
			srv, err := server.NewServer(cfg, store, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server: %w", err)
			case <-ctx.Done():
			}

			logger.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	c.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides PORT)")
	c.Flags().StringVar(&uploadDir, "upload-dir", "", "Upload directory (overrides UPLOAD_DIR)")
	return c
}
