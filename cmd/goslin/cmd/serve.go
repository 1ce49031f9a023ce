package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/goslin/pkg/server"
)

var (
	serveAddr    string
	metricsPath  string
	shutdownWait = 5 * time.Second
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from serve.addr, ':8080')")
	serveCmd.Flags().StringVar(&metricsPath, "metrics-path", "", "Prometheus metrics path (default from serve.metrics_path)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a JSON lipid parsing endpoint",
	Long: `Start an HTTP server that parses lipid names.

Endpoints:
  GET  /api/parse?name=PC+34:1&level=species
  POST /api/parse   {"names": ["PC 34:1"], "level": "species"}
  GET  /api/classes?category=GP
  GET  /healthz
  GET  /metrics     Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Serve.Addr = serveAddr
	}
	if metricsPath != "" {
		cfg.Serve.MetricsPath = metricsPath
	}

	s, err := server.New(logger, parserOptions()...)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	s.RegisterHTTPHandlers(mux, cfg.Serve.MetricsPath)

	srv := &http.Server{
		Addr:        cfg.Serve.Addr,
		Handler:     mux,
		ReadTimeout: cfg.Serve.ReadTimeout,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			slog.String("addr", cfg.Serve.Addr),
			slog.String("metrics", cfg.Serve.MetricsPath))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
