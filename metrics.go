package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This file defines the Prometheus metrics that are exposed by the application.

// httpRequestsTotal tracks HTTP requests by URL path, method and status code.
var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "islandcities_http_requests_total",
	Help: "Total number of HTTP requests by path, method and code.",
}, []string{"path", "method", "code"})

var httpRequestsRateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Name: "islandcities_http_requests_rate_limited_total",
	Help: "Total number of HTTP requests rejected by the rate limiter.",
})

// citiesLoaded is the number of records, valid or not, in the current snapshot.
var citiesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "islandcities_cities_loaded",
	Help: "Number of city records in the current snapshot.",
})

var snapshotReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "islandcities_snapshot_reloads_total",
	Help: "Total number of city snapshot reloads by result.",
}, []string{"result"})

var summaryCacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "islandcities_result_cache_lookups_total",
	Help: "Total number of result cache lookups by result (hit or miss).",
}, []string{"result"})
