package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/cor0nius/islandcities/citymatch"
	"github.com/redis/go-redis/v9"
)

// This file contains the result caching for the aggregation endpoints.
// Results are keyed by snapshot ID, so a reload never serves stale answers and
// old keys simply expire.

const (
	hasWordCachePrefix    = "haswordresult"
	populationCachePrefix = "population"
)

// getCachedOrCompute returns the cached result under key or computes, caches
// and returns it. Concurrent misses for the same key share one computation.
// Cache failures are logged and never fail the call.
func getCachedOrCompute[T any](cfg *apiConfig, ctx context.Context, key string, compute func() T) T {
	cachedData, err := cfg.cache.Get(ctx, key)
	if err == nil {
		var item T
		jsonErr := json.Unmarshal([]byte(cachedData), &item)
		if jsonErr == nil {
			cfg.logger.Debug("cache hit", "key", key)
			summaryCacheResults.WithLabelValues("hit").Inc()
			return item
		}
		cfg.logger.Warn("invalid cache entry: unmarshal error", "key", key, "error", jsonErr)
	} else if !errors.Is(err, redis.Nil) {
		cfg.logger.Warn("error getting from redis", "key", key, "error", err)
	}
	summaryCacheResults.WithLabelValues("miss").Inc()

	v, _, _ := cfg.summaryGroup.Do(key, func() (any, error) {
		item := compute()
		if cacheErr := cfg.cache.Set(ctx, key, item, cfg.cacheTTL); cacheErr != nil {
			cfg.logger.Warn("error setting to redis", "key", key, "error", cacheErr)
		} else {
			cfg.logger.Debug("set to cache", "key", key)
		}
		return item, nil
	})
	return v.(T)
}

// cacheKey builds "<prefix>:<snapshot>:<parts...>", escaping each part so a
// word containing ':' cannot collide with another key.
func cacheKey(prefix string, snap *snapshot, parts ...string) string {
	key := fmt.Sprintf("%s:%s", prefix, snap.ID.String())
	for _, p := range parts {
		key += ":" + url.QueryEscape(p)
	}
	return key
}

// cachedHasWord answers the existence query for word, optionally restricted
// to the cities of one island.
func (cfg *apiConfig) cachedHasWord(ctx context.Context, snap *snapshot, word, island string) bool {
	key := cacheKey(hasWordCachePrefix, snap, citymatch.Normalize(word), island)
	return getCachedOrCompute(cfg, ctx, key, func() bool {
		records := snap.Records
		if island != "" {
			records = citymatch.FilterByIsland(records, island)
		}
		return citymatch.HasWord(records, word)
	})
}

func (cfg *apiConfig) cachedPopulation(ctx context.Context, snap *snapshot, word string) citymatch.Summary {
	key := cacheKey(populationCachePrefix, snap, citymatch.Normalize(word))
	return getCachedOrCompute(cfg, ctx, key, func() citymatch.Summary {
		return citymatch.PopulationByIsland(snap.Records, word)
	})
}
