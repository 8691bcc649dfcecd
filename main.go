package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const limiterIdleTimeout = 10 * time.Minute

func main() {
	cfg, err := NewAPIConfig(os.Stdout)
	if err != nil {
		newLogger(os.Stdout, false).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg.logger.Debug("configuration loaded")

	if err := cfg.ConnectDB(); err != nil {
		os.Exit(1)
	}
	if err := cfg.SeedCities(context.Background()); err != nil {
		cfg.logger.Error("couldn't seed cities table", "error", err)
		os.Exit(1)
	}
	if err := cfg.ConnectCache(context.Background()); err != nil {
		os.Exit(1)
	}

	snap, err := cfg.reloadSnapshot(context.Background())
	if err != nil {
		cfg.logger.Error("initial city load failed", "error", err)
		os.Exit(1)
	}
	cfg.logSnapshotReport(snap)

	scheduler := NewScheduler(cfg, cfg.reloadInterval)
	cfg.logger.Info("starting scheduler", "reload", cfg.reloadInterval.String())
	scheduler.Start()

	limiter := newClientLimiter(cfg.rateLimitRPS, cfg.rateLimitBurst)
	go func() {
		for range time.Tick(time.Minute) {
			limiter.Sweep(limiterIdleTimeout)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/haskai", cfg.handlerHasKai)
	mux.HandleFunc("/api/population", cfg.handlerPopulation)
	mux.HandleFunc("/api/config", cfg.handlerConfig)
	mux.Handle("/metrics", promhttp.Handler())

	if cfg.devMode {
		cfg.logger.Debug("development mode enabled, registering /dev endpoints")
		mux.HandleFunc("/dev/reset-cache", cfg.handlerResetCache)
		mux.HandleFunc("/dev/reload", scheduler.handlerReload)
	}

	handler := metricsMiddleware(corsMiddleware(cfg.rateLimitMiddleware(limiter)(mux)))

	server := &http.Server{
		Addr:              ":" + cfg.port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	cfg.logger.Info("starting server", "port", cfg.port)
	if err := server.ListenAndServe(); err != nil {
		cfg.logger.Error("server startup failed", "error", err)
		scheduler.Stop()
		os.Exit(1)
	}
}
