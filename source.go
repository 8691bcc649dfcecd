package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// This file contains the city record sources and the snapshot they are loaded into.
// Records are decoded into plain `any` values so that malformed entries reach
// the citymatch aggregators untouched and are skipped there.

type citySource interface {
	Name() string
	ListRecords(ctx context.Context) ([]any, error)
}

// fileSource reads a JSON array of city objects from disk.
type fileSource struct {
	path string
}

func (s *fileSource) Name() string {
	return "file:" + s.path
}

func (s *fileSource) ListRecords(ctx context.Context) ([]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("could not read cities file: %w", err)
	}
	return decodeRecords(data)
}

// decodeRecords decodes a JSON array. A top-level value that is not an array
// is an error; the elements themselves may be anything.
func decodeRecords(data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var records []any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("could not decode cities: %w", err)
	}
	if records == nil {
		records = []any{}
	}
	return records, nil
}

// postgresSource reads city documents from the cities table.
type postgresSource struct {
	db     dbQuerier
	logger *slog.Logger
}

func (s *postgresSource) Name() string {
	return "postgres"
}

// ListRecords returns one record per row, in table order. A row whose document
// cannot be decoded becomes a nil record, which the aggregators skip.
func (s *postgresSource) ListRecords(ctx context.Context) ([]any, error) {
	rows, err := s.db.ListCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("database error when listing cities: %w", err)
	}

	records := make([]any, len(rows))
	for i, row := range rows {
		dec := json.NewDecoder(bytes.NewReader(row.Doc))
		dec.UseNumber()
		var rec any
		if err := dec.Decode(&rec); err != nil {
			s.logger.Warn("could not decode city document", "id", row.ID, "error", err)
			continue
		}
		records[i] = rec
	}
	return records, nil
}

type snapshot struct {
	ID       uuid.UUID
	Records  []any
	LoadedAt time.Time
	Source   string
}

// snapshotStore holds the currently served snapshot.
type snapshotStore struct {
	mu      sync.RWMutex
	current *snapshot
}

func (s *snapshotStore) Current() (*snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

func (s *snapshotStore) Replace(snap *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = snap
}

// reloadSnapshot loads all records from the configured source and swaps them
// in under a new snapshot ID. On failure the previous snapshot stays in place.
func (cfg *apiConfig) reloadSnapshot(ctx context.Context) (*snapshot, error) {
	records, err := cfg.source.ListRecords(ctx)
	if err != nil {
		snapshotReloadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("could not load cities from %s: %w", cfg.source.Name(), err)
	}

	snap := &snapshot{
		ID:       uuid.New(),
		Records:  records,
		LoadedAt: time.Now().UTC(),
		Source:   cfg.source.Name(),
	}
	cfg.snapshots.Replace(snap)

	snapshotReloadsTotal.WithLabelValues("success").Inc()
	citiesLoaded.Set(float64(len(records)))
	cfg.logger.Info("city snapshot loaded", "snapshot_id", snap.ID, "source", snap.Source, "records", len(records))
	return snap, nil
}
