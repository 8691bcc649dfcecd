package main

import (
	"net/http"
)

// This file contains the HTTP handlers. The query handlers follow the same pattern:
// 1. They ensure the request method is GET.
// 2. They read the word to match (default "kai").
// 3. They take the current city snapshot.
// 4. They compute the answer through the result cache.
// 5. They send the JSON response to the client.

// @Summary      Check for a matching city name
// @Description  Reports whether any city name contains the word, ignoring case,
// @Description  kahakō and ʻokina encoding. Optionally restricted to one island.
// @Tags         cities
// @Produce      json
// @Param        word   query     string  false  "Word to look for (default 'kai')"
// @Param        island query     string  false  "Only consider cities on this island (e.g., 'Lanai')"
// @Success      200  {object}  HasWordResponse
// @Failure      400  {object}  ErrorResponse "Bad Request - Empty word"
// @Failure      503  {object}  ErrorResponse "Service Unavailable - City data not loaded"
// @Router       /api/haskai [get]
func (cfg *apiConfig) handlerHasKai(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	word, err := wordFromRequest(r)
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid word parameter", err)
		return
	}
	island := r.URL.Query().Get("island")

	snap, ok := cfg.currentSnapshot(w)
	if !ok {
		return
	}
	cfg.logger.Debug("has word request", "word", word, "island", island, "snapshot_id", snap.ID)

	cfg.respondWithJSON(w, http.StatusOK, HasWordResponse{
		Word:       word,
		Island:     island,
		HasMatch:   cfg.cachedHasWord(r.Context(), snap, word, island),
		SnapshotID: snap.ID,
	})
}

// @Summary      Population of matching cities per island
// @Description  Sums the population of cities whose name contains the word, grouped
// @Description  by island. Cities without an island are grouped under "Unknown".
// @Tags         cities
// @Produce      json
// @Param        word query     string  false  "Word to look for (default 'kai')"
// @Success      200  {object}  PopulationResponse
// @Failure      400  {object}  ErrorResponse "Bad Request - Empty word"
// @Failure      503  {object}  ErrorResponse "Service Unavailable - City data not loaded"
// @Router       /api/population [get]
func (cfg *apiConfig) handlerPopulation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	word, err := wordFromRequest(r)
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid word parameter", err)
		return
	}

	snap, ok := cfg.currentSnapshot(w)
	if !ok {
		return
	}
	cfg.logger.Debug("population request", "word", word, "snapshot_id", snap.ID)

	summary := cfg.cachedPopulation(r.Context(), snap, word)

	cfg.respondWithJSON(w, http.StatusOK, PopulationResponse{
		Word:        word,
		Populations: summary,
		Total:       summary.Total(),
		SnapshotID:  snap.ID,
	})
}

// @Summary      Get application configuration
// @Tags         configuration
// @Produce      json
// @Success      200  {object}  ConfigResponse
// @Router       /api/config [get]
func (cfg *apiConfig) handlerConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, ConfigResponse{
		DevMode:        cfg.devMode,
		Source:         cfg.source.Name(),
		ReloadInterval: cfg.reloadInterval.String(),
		CacheTTL:       cfg.cacheTTL.String(),
	})
}

// handlerResetCache is a development-only endpoint that flushes the result cache.

// @Summary      Flush result cache (development only)
// @Tags         development
// @Produce      json
// @Success      200  {object}  map[string]string "Example: `{\"status\":\"cache reset\"}`"
// @Failure      500  {object}  ErrorResponse "Internal Server Error - Failed to flush cache"
// @Router       /dev/reset-cache [post]
func (cfg *apiConfig) handlerResetCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}
	cfg.logger.Debug("cache reset request received")

	if err := cfg.cache.Flush(r.Context()); err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Failed to flush cache", err)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, map[string]string{"status": "cache reset"})
}

// handlerReload is a development-only endpoint that reloads the city data
// immediately and restarts the reload interval.

// @Summary      Reload city data (development only)
// @Tags         development
// @Produce      json
// @Success      200  {object}  map[string]string "Example: `{\"status\":\"reloaded\",\"snapshot_id\":\"...\"}`"
// @Failure      500  {object}  ErrorResponse "Internal Server Error - Failed to reload city data"
// @Router       /dev/reload [post]
func (s *Scheduler) handlerReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}
	s.cfg.logger.Info("manual reload triggered")

	s.ticker.Reset(s.cfg.reloadInterval)
	snap, err := s.runReload(r.Context())
	if err != nil {
		s.cfg.respondWithError(w, http.StatusInternalServerError, "Failed to reload city data", err)
		return
	}

	s.cfg.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":      "reloaded",
		"snapshot_id": snap.ID.String(),
	})
}
