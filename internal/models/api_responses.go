// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

package models

import "time"

// APIResponse is the standardized response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
// FetchTimeMS is the wall-clock duration of the fetch cycle that produced
// the response, zero for endpoints that do not fetch.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	FetchTimeMS int64     `json:"fetch_time_ms,omitempty"`
}

// APIError represents an error response with structured error details.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// HealthStatus reports process health for the /health endpoint.
type HealthStatus struct {
	Status            string  `json:"status"` // "healthy" or "degraded"
	Version           string  `json:"version"`
	ConfiguredServers int     `json:"configured_servers"`
	Uptime            float64 `json:"uptime_seconds"`
}
