package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cor0nius/islandcities/internal/database"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// --- Mocks ---

// mockCache is a mock for the Cache interface. Unset functions behave like an empty cache.
type mockCache struct {
	getFunc   func(ctx context.Context, key string) (string, error)
	setFunc   func(ctx context.Context, key string, value any, expiration time.Duration) error
	flushFunc func(ctx context.Context) error
}

func (m *mockCache) Get(ctx context.Context, key string) (string, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key)
	}
	return "", redis.Nil
}

func (m *mockCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, key, value, expiration)
	}
	return nil
}

func (m *mockCache) Flush(ctx context.Context) error {
	if m.flushFunc != nil {
		return m.flushFunc(ctx)
	}
	return nil
}

// mockQuerier is a mock for the dbQuerier interface.
// It fails the test if any unexpected method is called.
type mockQuerier struct {
	t *testing.T

	CountCitiesFunc func(ctx context.Context) (int64, error)
	CreateCityFunc  func(ctx context.Context, arg database.CreateCityParams) (database.City, error)
	ListCitiesFunc  func(ctx context.Context) ([]database.City, error)
}

func (m *mockQuerier) fail(method string) {
	m.t.Fatalf("unexpected call to mockQuerier method: %s", method)
}

func (m *mockQuerier) CountCities(ctx context.Context) (int64, error) {
	if m.CountCitiesFunc != nil {
		return m.CountCitiesFunc(ctx)
	}
	m.fail("CountCities")
	return 0, nil
}

func (m *mockQuerier) CreateCity(ctx context.Context, arg database.CreateCityParams) (database.City, error) {
	if m.CreateCityFunc != nil {
		return m.CreateCityFunc(ctx, arg)
	}
	m.fail("CreateCity")
	return database.City{}, nil
}

func (m *mockQuerier) ListCities(ctx context.Context) ([]database.City, error) {
	if m.ListCitiesFunc != nil {
		return m.ListCitiesFunc(ctx)
	}
	m.fail("ListCities")
	return nil, nil
}

// mockSource is a citySource returning fixed records or an error.
type mockSource struct {
	records []any
	err     error
	calls   int
}

func (m *mockSource) Name() string {
	return "mock"
}

func (m *mockSource) ListRecords(ctx context.Context) ([]any, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

// --- Test config ---

type testAPIConfig struct {
	*apiConfig
	mockDB    *mockQuerier
	mockCache *mockCache
	source    *mockSource
}

// newTestAPIConfig returns an apiConfig wired to mocks, logging nowhere.
func newTestAPIConfig(t *testing.T) *testAPIConfig {
	t.Helper()
	db := &mockQuerier{t: t}
	cache := &mockCache{}
	source := &mockSource{}
	cfg := &apiConfig{
		dbQueries:      db,
		cache:          cache,
		source:         source,
		snapshots:      &snapshotStore{},
		cacheTTL:       10 * time.Minute,
		reloadInterval: time.Hour,
		rateLimitRPS:   10,
		rateLimitBurst: 20,
		port:           "8080",
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return &testAPIConfig{apiConfig: cfg, mockDB: db, mockCache: cache, source: source}
}

// withSnapshot installs a snapshot holding records and returns it.
func (c *testAPIConfig) withSnapshot(records ...any) *snapshot {
	snap := &snapshot{ID: uuid.New(), Records: records, LoadedAt: time.Now().UTC(), Source: "mock"}
	c.snapshots.Replace(snap)
	return snap
}

func testCity(name string, population any, island string) map[string]any {
	c := map[string]any{"name": name, "population": population}
	if island != "" {
		c["island"] = island
	}
	return c
}
