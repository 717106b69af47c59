package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"batch-run-inspector/api/rest/routes"
	"batch-run-inspector/config"
	"batch-run-inspector/core/inspector"
	"batch-run-inspector/core/logquery"
	"batch-run-inspector/core/spec"
	"batch-run-inspector/providers/aws"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	logger := cfg.NewLogger()
	entry := log.NewEntry(logger)

	profile, err := spec.LoadProfile(cfg.EngineProfileFile)
	if err != nil {
		entry.WithError(err).Fatal("Failed to load engine profile")
	}

	// Initialize provider
	ctx := context.Background()
	awsClient, err := aws.NewClient(ctx, cfg.AWSRegion)
	if err != nil {
		entry.WithError(err).Fatal("Failed to load AWS configuration")
	}

	// Initialize log query executor and run inspector
	executor := logquery.NewExecutor(awsClient, logquery.Options{
		LogGroup:      cfg.EngineLogGroup,
		WindowSeconds: cfg.QueryWindowSeconds(),
		Limit:         cfg.QueryResultLimit,
		PollInterval:  cfg.QueryPollInterval,
		Logger:        entry.WithField("component", "logquery"),
	})
	runInspector := inspector.NewInspector(awsClient, executor, profile, entry.WithField("component", "inspector"))

	r := mux.NewRouter()
	routes.SetupRoutes(r, runInspector, cfg.RequestTimeout, entry.WithField("component", "api"))

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		entry.WithFields(log.Fields{
			"port":      cfg.ServerPort,
			"region":    awsClient.Region(),
			"log_group": cfg.EngineLogGroup,
			"engine":    profile.Engine,
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			entry.WithError(err).Fatal("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	entry.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		entry.WithError(err).Fatal("Server forced to shutdown")
	}
	entry.Info("Server exited")
}
