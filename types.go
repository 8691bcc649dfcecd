package main

import (
	"github.com/cor0nius/islandcities/citymatch"
	"github.com/google/uuid"
)

type HasWordResponse struct {
	Word       string    `json:"word"`
	Island     string    `json:"island,omitempty"`
	HasMatch   bool      `json:"has_match"`
	SnapshotID uuid.UUID `json:"snapshot_id"`
}

type PopulationResponse struct {
	Word        string            `json:"word"`
	Populations citymatch.Summary `json:"populations"`
	Total       float64           `json:"total"`
	SnapshotID  uuid.UUID         `json:"snapshot_id"`
}

type ConfigResponse struct {
	DevMode        bool   `json:"dev_mode"`
	Source         string `json:"source"`
	ReloadInterval string `json:"reload_interval"`
	CacheTTL       string `json:"cache_ttl"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
