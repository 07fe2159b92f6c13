// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gthrift/activestreams-unraid/internal/config"
	"github.com/gthrift/activestreams-unraid/internal/fetch"
	"github.com/gthrift/activestreams-unraid/internal/logging"
	"github.com/gthrift/activestreams-unraid/internal/models"
	"github.com/gthrift/activestreams-unraid/internal/render"
)

//go:embed index.html
var indexFS embed.FS

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	cfg         *config.Config
	coordinator *fetch.Coordinator
	version     string
	startTime   time.Time
	indexPage   []byte
}

// NewHandler creates a handler with its dependencies. The dashboard page is
// rendered once at startup since its only dynamic value is the poll interval.
func NewHandler(cfg *config.Config, coordinator *fetch.Coordinator, version string) *Handler {
	h := &Handler{
		cfg:         cfg,
		coordinator: coordinator,
		version:     version,
		startTime:   time.Now(),
	}

	tmpl, err := template.ParseFS(indexFS, "index.html")
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to parse dashboard template")
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]interface{}{
		"RefreshSeconds": cfg.Display.RefreshSeconds,
		"Version":        version,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to render dashboard template")
	}
	h.indexPage = buf.Bytes()

	return h
}

// Index serves the embedded dashboard page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(h.indexPage); err != nil {
		logging.Error().Err(err).Msg("Failed to write dashboard page")
	}
}

func (h *Handler) fetch(r *http.Request) (models.FetchResult, time.Duration) {
	start := time.Now()
	result := h.coordinator.Fetch(r.Context(), h.cfg.Servers, fetch.Options{
		ShowEpisodes: h.cfg.Display.ShowEpisodes,
	})
	return result, time.Since(start)
}

// Streams fetches current playback from every configured server and returns
// the combined result as JSON. Per-server failures are reported inside the
// payload; the endpoint itself always answers 200.
func (h *Handler) Streams(w http.ResponseWriter, r *http.Request) {
	result, elapsed := h.fetch(r)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   result,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			FetchTimeMS: elapsed.Milliseconds(),
		},
	})
}

// StreamsFragment fetches current playback and returns a server-rendered
// HTML fragment for the dashboard poller.
func (h *Handler) StreamsFragment(w http.ResponseWriter, r *http.Request) {
	result, _ := h.fetch(r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write([]byte(render.Fragment(result))); err != nil {
		logging.Error().Err(err).Msg("Failed to write stream fragment")
	}
}

// Health reports process health. The service is healthy whenever it can
// serve requests; media servers being unreachable is reported per-fetch,
// not here.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if len(h.cfg.Servers) == 0 {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthStatus{
			Status:            status,
			Version:           h.version,
			ConfiguredServers: len(h.cfg.Servers),
			Uptime:            time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthLive is the liveness probe: the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HealthReady is the readiness probe: ready once configuration holds at
// least one server to aggregate.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if len(h.cfg.Servers) == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no servers configured"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
