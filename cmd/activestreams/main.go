// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

// Package main is the entry point for the Activestreams server.
//
// Activestreams aggregates "now playing" sessions from any mix of Plex,
// Emby, and Jellyfin servers into one view. Every request to the streams
// API polls all configured servers in parallel, normalizes their session
// payloads into a common shape, and returns the combined result in
// configuration order. A server that fails to answer degrades to an
// inline error entry instead of failing the whole response.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (ACTIVESTREAMS_* prefix)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// The media server registry can only be expressed in the config file:
//
//	servers:
//	  - type: plex
//	    name: Living Room
//	    host: 192.168.1.10
//	    port: 32400
//	    credential: your-plex-token
//	  - type: jellyfin
//	    name: Attic
//	    host: 192.168.1.11
//	    port: 8096
//	    credential: your-api-key
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections and waits up to 10 seconds for in-flight
// requests to drain.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gthrift/activestreams-unraid/internal/api"
	"github.com/gthrift/activestreams-unraid/internal/config"
	"github.com/gthrift/activestreams-unraid/internal/fetch"
	"github.com/gthrift/activestreams-unraid/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (overrides CONFIG_PATH)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("activestreams " + version)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Int("servers", len(cfg.Servers)).
		Bool("breaker_enabled", cfg.Fetch.BreakerEnabled).
		Msg("Starting Activestreams")

	for i := range cfg.Servers {
		s := &cfg.Servers[i]
		logging.Info().
			Str("type", string(s.Type)).
			Str("name", s.Name).
			Str("url", s.BaseURL()).
			Msg("Registered media server")
	}
	if len(cfg.Servers) == 0 {
		logging.Warn().Msg("No media servers configured; dashboard will show the empty state")
	}

	coordinator := fetch.NewCoordinator(fetch.Config{
		ConnectTimeout: cfg.Fetch.ConnectTimeout,
		RequestTimeout: cfg.Fetch.RequestTimeout,
		BreakerEnabled: cfg.Fetch.BreakerEnabled,
	})

	router := api.NewRouter(cfg, coordinator, version)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		serveErr <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("Application stopped gracefully")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
