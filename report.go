package main

import (
	"github.com/cor0nius/islandcities/citymatch"
)

// logSnapshotReport logs the default "kai" aggregates for a freshly loaded snapshot.
func (cfg *apiConfig) logSnapshotReport(snap *snapshot) {
	summary := citymatch.PopulationCitiesKai(snap.Records)
	cfg.logger.Info("populationCitiesKai",
		"snapshot_id", snap.ID,
		"populations", map[string]float64(summary),
		"islands", len(summary),
	)
	cfg.logger.Info("total", "snapshot_id", snap.ID, "population", summary.Total())
	cfg.logger.Info("hasKai", "snapshot_id", snap.ID, "result", citymatch.HasKai(snap.Records))
}
