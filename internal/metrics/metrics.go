// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

// Package metrics provides Prometheus instrumentation for:
//   - Per-server fetch latency and failures
//   - Active and transcoding stream counts
//   - Circuit breaker state
//   - API endpoint latency
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Fetch Metrics
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "activestreams_fetch_duration_seconds",
			Help:    "Duration of per-server session fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"server_type"},
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activestreams_fetch_errors_total",
			Help: "Total number of per-server fetch failures",
		},
		[]string{"server_type", "reason"}, // reason: "transport", "status", "parse", "breaker_open", "unknown_type"
	)

	FetchCycles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activestreams_fetch_cycles_total",
			Help: "Total number of completed fetch cycles",
		},
	)

	// Stream Metrics
	ActiveStreams = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "activestreams_active_streams",
			Help: "Active streams observed in the most recent fetch cycle",
		},
		[]string{"server_name", "server_type"},
	)

	TranscodingStreams = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "activestreams_transcoding_streams",
			Help: "Transcoding streams observed in the most recent fetch cycle",
		},
		[]string{"server_name", "server_type"},
	)

	// Circuit Breaker Metrics
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "activestreams_breaker_state",
			Help: "Circuit breaker state per server (0=closed, 1=half-open, 2=open)",
		},
		[]string{"server_name"},
	)

	// API Metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "activestreams_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "status"},
	)
)

// ObserveFetch records one per-server fetch with its outcome.
func ObserveFetch(serverType string, d time.Duration, errReason string) {
	FetchDuration.WithLabelValues(serverType).Observe(d.Seconds())
	if errReason != "" {
		FetchErrors.WithLabelValues(serverType, errReason).Inc()
	}
}
