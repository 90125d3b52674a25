package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/confaudit/confaudit/internal/api"
	"github.com/confaudit/confaudit/internal/observability/metrics"
	"github.com/confaudit/confaudit/pkg/constants"
)

func main() {
	config := ParseFlags()

	logger := setupLogger(config.LogLevel, config.LogFormat)

	logger.WithFields(logrus.Fields{
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
	}).Info("Starting configuration audit server")

	promMetrics := metrics.NewPrometheusMetrics(logger)
	router := api.NewRouter(promMetrics, logger)

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Expose metrics on a dedicated port as well as the main mux.
	go func() {
		metricsAddr := fmt.Sprintf(":%d", config.MetricsPort)
		logger.WithField("address", metricsAddr).Info("Starting metrics server")

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promMetrics.Handler())

		if err := http.ListenAndServe(metricsAddr, metricsMux); err != nil {
			logger.WithError(err).Error("Metrics server failed")
		}
	}()

	serverAddr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  constants.DefaultReadTimeout,
		WriteTimeout: constants.DefaultWriteTimeout,
		IdleTimeout:  constants.DefaultIdleTimeout,
	}

	go func() {
		logger.WithField("address", serverAddr).Info("Starting HTTP server")

		var err error
		if config.EnableTLS && config.TLSCert != "" && config.TLSKey != "" {
			err = srv.ListenAndServeTLS(config.TLSCert, config.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	logger.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	logger.Info("Server stopped")
}

func setupLogger(level, format string) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
