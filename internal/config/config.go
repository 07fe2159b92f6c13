// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

// Package config loads and validates application configuration.
//
// Configuration is layered via Koanf v2 (highest priority wins):
//  1. Built-in defaults
//  2. Config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (ACTIVESTREAMS_* prefix)
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gthrift/activestreams-unraid/internal/models"
)

// Config is the root application configuration.
type Config struct {
	// Servers is the ordered registry of media servers to poll. An empty
	// list is valid and renders the informational empty state. Entries are
	// validated one by one in Validate so errors name their position.
	Servers []models.ServerDescriptor `koanf:"servers" validate:"-"`

	Display DisplayConfig `koanf:"display"`
	Fetch   FetchConfig   `koanf:"fetch"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// DisplayConfig holds presentation options.
type DisplayConfig struct {
	// ShowEpisodes renders "SxEy" numbering in episode titles.
	ShowEpisodes bool `koanf:"show_episodes"`

	// RefreshSeconds is how often the dashboard page re-polls the
	// fragment endpoint.
	RefreshSeconds int `koanf:"refresh_seconds" validate:"min=1,max=3600"`
}

// FetchConfig holds per-request fetch cycle tuning.
type FetchConfig struct {
	// ConnectTimeout bounds TCP connect and TLS handshake per server.
	ConnectTimeout time.Duration `koanf:"connect_timeout"`

	// RequestTimeout bounds the whole request per server. All servers are
	// polled in parallel, so a cycle's wall clock is the max single
	// timeout, not the sum.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// BreakerEnabled short-circuits servers that fail repeatedly: while a
	// server's breaker is open its cycle slot degrades to a FetchError
	// without a request being issued. Not a retry mechanism.
	BreakerEnabled bool `koanf:"breaker_enabled"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout         time.Duration `koanf:"timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Servers: nil,
		Display: DisplayConfig{
			ShowEpisodes:   false,
			RefreshSeconds: 10,
		},
		Fetch: FetchConfig{
			ConnectTimeout: 5 * time.Second,
			RequestTimeout: 10 * time.Second,
			BreakerEnabled: true,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3900,
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

var validate = validator.New()

// Validate checks the configuration for invalid values. Server entries are
// validated individually so one bad entry names its position.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for i := range c.Servers {
		s := &c.Servers[i]
		if err := validate.Struct(s); err != nil {
			return fmt.Errorf("server %d (%s): %w", i, s.Name, err)
		}
		if !s.Type.Valid() {
			return fmt.Errorf("server %d (%s): unknown type %q", i, s.Name, s.Type)
		}
	}

	if c.Fetch.ConnectTimeout <= 0 {
		return fmt.Errorf("fetch.connect_timeout must be positive, got %s", c.Fetch.ConnectTimeout)
	}
	if c.Fetch.RequestTimeout < c.Fetch.ConnectTimeout {
		return fmt.Errorf("fetch.request_timeout (%s) must be >= fetch.connect_timeout (%s)",
			c.Fetch.RequestTimeout, c.Fetch.ConnectTimeout)
	}

	return nil
}
