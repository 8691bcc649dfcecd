// Command scraper serves a single endpoint that copies the islandcities
// Prometheus metrics into Google Cloud Monitoring each time it is called.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cor0nius/islandcities/internal/scraper"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	s, err := scraper.New(scraper.Config{
		MetricsURL: os.Getenv("METRICS_URL"),
		ProjectID:  os.Getenv("PROJECT_ID"),
		Location:   os.Getenv("MONITORING_LOCATION"),
	}, scraper.CloudWriter{}, logger)
	if err != nil {
		logger.Error("invalid scraper configuration", "error", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	mux.Handle("/", s)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("starting server", "port", port)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
