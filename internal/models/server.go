// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

package models

import "fmt"

// ServerType identifies which media server protocol a descriptor speaks.
type ServerType string

// Supported media server types.
const (
	ServerTypePlex     ServerType = "plex"
	ServerTypeEmby     ServerType = "emby"
	ServerTypeJellyfin ServerType = "jellyfin"
)

// Valid reports whether the server type is one of the supported variants.
func (t ServerType) Valid() bool {
	switch t {
	case ServerTypePlex, ServerTypeEmby, ServerTypeJellyfin:
		return true
	default:
		return false
	}
}

// Color returns the accent color used when rendering streams from this
// server type. Unknown types fall back to a neutral gray.
func (t ServerType) Color() string {
	switch t {
	case ServerTypePlex:
		return "#e5a00d"
	case ServerTypeEmby:
		return "#52b54b"
	case ServerTypeJellyfin:
		return "#00a4dc"
	default:
		return "#888"
	}
}

// ServerDescriptor is the configuration for one media server. The fetch
// pipeline reads an immutable snapshot of these per cycle; it never mutates
// or persists them.
type ServerDescriptor struct {
	Type       ServerType `json:"type" koanf:"type" validate:"required,oneof=plex emby jellyfin"`
	Name       string     `json:"name" koanf:"name" validate:"required,max=100"`
	Host       string     `json:"host" koanf:"host" validate:"required"`
	Port       int        `json:"port" koanf:"port" validate:"required,min=1,max=65535"`
	Credential string     `json:"-" koanf:"credential" validate:"required"`
	UseTLS     bool       `json:"use_tls" koanf:"use_tls"`
	// VerifyTLS controls certificate and hostname verification. Only
	// meaningful when UseTLS is set; disabling it is a deliberate opt-in
	// for self-signed servers.
	VerifyTLS bool `json:"verify_tls" koanf:"verify_tls"`
}

// BaseURL builds the scheme://host:port prefix for this server.
func (d *ServerDescriptor) BaseURL() string {
	scheme := "http"
	if d.UseTLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, hostForURL(d.Host), d.Port)
}

// hostForURL brackets IPv6 literals so they are valid in a URL authority.
func hostForURL(host string) string {
	for i := 0; i < len(host); i++ {
		if host[i] == ':' {
			return "[" + host + "]"
		}
	}
	return host
}
