package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cor0nius/islandcities/internal/database"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// ConnectDB establishes a connection to the PostgreSQL database using the
// connection string in the apiConfig struct. It initializes dbQueries with the
// sqlc-generated Queries struct and switches the city source to the cities
// table. Without a DB_URL the service keeps reading CITIES_FILE.
func (cfg *apiConfig) ConnectDB() error {
	if cfg.dbURL == "" {
		cfg.logger.Info("DB_URL not set, reading cities from file", "path", cfg.citiesFile)
		return nil
	}
	db, err := cfg.newDBClientFunc("postgres", cfg.dbURL)
	if err != nil {
		cfg.logger.Error("couldn't prepare connection to database", "error", err)
		return err
	}
	if err := db.Ping(); err != nil {
		cfg.logger.Error("couldn't connect to database", "error", err)
		return err
	}
	cfg.dbQueries = database.New(db)
	cfg.source = &postgresSource{db: cfg.dbQueries, logger: cfg.logger}
	cfg.logger.Info("connected to database")
	return nil
}

// dbQuerier abstracts the database operations, implemented by the
// sqlc-generated Queries struct.
type dbQuerier interface {
	CountCities(ctx context.Context) (int64, error)
	CreateCity(ctx context.Context, arg database.CreateCityParams) (database.City, error)
	ListCities(ctx context.Context) ([]database.City, error)
}

// SeedCities copies CITIES_FILE into the cities table when the table is
// empty. It does nothing without a database or when the table already has
// rows, and a missing file only skips seeding. Every record is stored as is,
// malformed ones included, so both sources serve the same data.
func (cfg *apiConfig) SeedCities(ctx context.Context) error {
	if cfg.dbURL == "" {
		return nil
	}
	count, err := cfg.dbQueries.CountCities(ctx)
	if err != nil {
		cfg.logger.Error("couldn't count cities", "error", err)
		return fmt.Errorf("database error when counting cities: %w", err)
	}
	if count > 0 {
		cfg.logger.Info("cities table already populated, skipping seed", "rows", count)
		return nil
	}

	records, err := (&fileSource{path: cfg.citiesFile}).ListRecords(ctx)
	if errors.Is(err, os.ErrNotExist) {
		cfg.logger.Info("cities table empty and no cities file to seed from", "path", cfg.citiesFile)
		return nil
	}
	if err != nil {
		return err
	}

	for i, rec := range records {
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("could not encode city %d: %w", i, err)
		}
		if _, err := cfg.dbQueries.CreateCity(ctx, database.CreateCityParams{ID: uuid.New(), Doc: doc}); err != nil {
			return fmt.Errorf("database error when creating city %d: %w", i, err)
		}
	}
	cfg.logger.Info("seeded cities table", "path", cfg.citiesFile, "rows", len(records))
	return nil
}
