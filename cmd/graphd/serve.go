package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piyushh2304/NOTIONGPT-sub000/internal/http"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the graphd HTTP server",
		Long: `Start the HTTP server exposing:

  GET  /graph/data          document graph of an org
  POST /graph/suggest       related documents for draft text
  GET  /graph/analyze-gaps  missing topics between clusters
  GET  /health              liveness
  GET  /metrics             Prometheus metrics

The org scope comes from the orgId query parameter or the X-Org-ID header.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return withApp(ctx, runServe)
		},
	}
}

// runServe blocks until ctx is cancelled, then drains in-flight requests
// within the configured shutdown timeout.
func runServe(ctx context.Context, a *app) error {
	server, err := http.NewServer(http.Services{
		Graph: a.builder,
		Radar: a.radar,
		Gaps:  a.analyzer,
	}, a.logger.Named("http"), &http.Config{
		Host: a.cfg.Server.Host,
		Port: a.cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}
	server.Mount("/metrics", promhttp.Handler())

	a.logger.Info("starting graphd",
		zap.String("version", version),
		zap.Int("port", a.cfg.Server.Port),
		zap.String("documents", a.cfg.Documents.Driver),
		zap.String("embeddings", a.cfg.Embeddings.Provider),
		zap.String("vectorstore", a.cfg.VectorStore.Provider),
		zap.String("completion", a.cfg.Completion.Provider))

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	a.logger.Info("server shutdown complete")
	return nil
}
