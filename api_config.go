package main

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type apiConfig struct {
	dbURL              string
	redisURL           string
	citiesFile         string
	dbQueries          dbQuerier
	cache              Cache
	source             citySource
	snapshots          *snapshotStore
	summaryGroup       singleflight.Group
	cacheTTL           time.Duration
	reloadInterval     time.Duration
	rateLimitRPS       int
	rateLimitBurst     int
	port               string
	devMode            bool
	logger             *slog.Logger
	newDBClientFunc    func(driverName, dataSourceName string) (*sql.DB, error)
	newRedisClientFunc func(opt *redis.Options) *redis.Client
}

// getEnv retrieves an environment variable by key, with a fallback value.
func getEnv(key, fallback string, logger *slog.Logger) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
	return fallback
}

// getEnvAsInt retrieves a positive integer environment variable, with a fallback value.
func getEnvAsInt(key string, fallback int, logger *slog.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok || valStr == "" {
		logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		logger.Warn("invalid integer value for environment variable, using fallback", "key", key, "value", valStr, "error", err)
		return fallback
	}
	return val
}

func getEnvAsBool(key string) bool {
	val, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return val
}

// newLogger returns a debug-level text logger in dev mode and a JSON logger otherwise.
func newLogger(w io.Writer, devMode bool) *slog.Logger {
	if devMode {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, nil))
}

// NewAPIConfig builds the application configuration from the environment,
// loading a .env file first if one exists. It does not open any connection;
// see ConnectDB and ConnectCache.
func NewAPIConfig(w io.Writer) (*apiConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("could not load .env file: %w", err)
	}

	devMode := getEnvAsBool("DEV_MODE")
	logger := newLogger(w, devMode)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL != "" {
		if _, err := redis.ParseURL(redisURL); err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
	}

	cfg := &apiConfig{
		dbURL:              os.Getenv("DB_URL"),
		redisURL:           redisURL,
		citiesFile:         getEnv("CITIES_FILE", "cities.json", logger),
		cache:              noopCache{},
		snapshots:          &snapshotStore{},
		cacheTTL:           time.Duration(getEnvAsInt("CACHE_TTL_MIN", 10, logger)) * time.Minute,
		reloadInterval:     time.Duration(getEnvAsInt("RELOAD_INTERVAL_MIN", 60, logger)) * time.Minute,
		rateLimitRPS:       getEnvAsInt("RATE_LIMIT_RPS", 10, logger),
		rateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20, logger),
		port:               getEnv("PORT", "8080", logger),
		devMode:            devMode,
		logger:             logger,
		newDBClientFunc:    sql.Open,
		newRedisClientFunc: redis.NewClient,
	}
	cfg.source = &fileSource{path: cfg.citiesFile}

	return cfg, nil
}
