// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

// Package api provides HTTP routing and handlers using the Chi router.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gthrift/activestreams-unraid/internal/config"
	"github.com/gthrift/activestreams-unraid/internal/fetch"
)

// Router wires handlers and middleware into an http.Handler.
type Router struct {
	handler *Handler
	cfg     *config.Config
}

// NewRouter builds the application router.
func NewRouter(cfg *config.Config, coordinator *fetch.Coordinator, version string) *Router {
	return &Router{
		handler: NewHandler(cfg, coordinator, version),
		cfg:     cfg,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Dashboard and Prometheus exposition.
	r.Get("/", router.handler.Index)
	r.Handle("/metrics", promhttp.Handler())

	// Health endpoints: permissive rate limit for monitoring probes.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Stream endpoints: each request triggers a fetch cycle against all
	// configured servers, so these get the configured rate limit.
	r.Route("/api/v1/streams", func(r chi.Router) {
		r.Use(httprate.LimitByIP(router.cfg.Server.RateLimitReqs, router.cfg.Server.RateLimitWindow))
		r.Use(durationMiddleware)
		r.Get("/", router.handler.Streams)
		r.Get("/fragment", router.handler.StreamsFragment)
	})

	return r
}
