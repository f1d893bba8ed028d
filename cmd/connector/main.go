package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"crm-softphone-connector/pkg/bridge"
	"crm-softphone-connector/pkg/config"
	"crm-softphone-connector/pkg/crm"
	"crm-softphone-connector/pkg/metrics"
	"crm-softphone-connector/pkg/models"
	"crm-softphone-connector/pkg/server"
	"crm-softphone-connector/pkg/widget"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.WithField("connector_id", cfg.ConnectorID).Info("Starting CRM softphone connector")

	// Initialize metrics
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)

	// Sandbox collaborators: an in-memory CRM directory and widget bus.
	// A deployment against a real CRM swaps these for live adapters.
	crmClient := crm.NewMemoryClient(
		models.Record{ID: "003xx000001", Name: "Jane Doe", RecordType: "Contact", Phone: "+16502530000"},
		models.Record{ID: "001xx000001", Name: "Acme Inc", RecordType: "Account", Phone: "+14155550100"},
	)
	bus := widget.NewMemoryBus()

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create and start the bridge
	b := bridge.New(cfg, crmClient, bus, logger, m, clock.New())
	b.Start(ctx)
	bus.EmitLoggedIn()

	// Start HTTP server
	srv := server.NewHTTPServer(cfg, b, bus, logger)
	go func() {
		logger.WithField("port", cfg.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Received shutdown signal")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}
	b.Stop()

	logger.Info("Connector shutdown complete")
}
