package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cor0nius/islandcities/citymatch"
)

var errEmptyWord = errors.New("word query parameter must not be empty")

// wordFromRequest returns the `word` query parameter, or citymatch.DefaultWord
// when the parameter is absent. A parameter that is present but blank is an error.
func wordFromRequest(r *http.Request) (string, error) {
	q := r.URL.Query()
	if !q.Has("word") {
		return citymatch.DefaultWord, nil
	}
	word := q.Get("word")
	if strings.TrimSpace(word) == "" {
		return "", errEmptyWord
	}
	return word, nil
}

// currentSnapshot writes a 503 and returns false if no snapshot has been loaded yet.
func (cfg *apiConfig) currentSnapshot(w http.ResponseWriter) (*snapshot, bool) {
	snap, ok := cfg.snapshots.Current()
	if !ok {
		cfg.respondWithError(w, http.StatusServiceUnavailable, "City data not loaded", nil)
		return nil, false
	}
	return snap, true
}
