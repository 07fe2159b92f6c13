// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

// Package fetch implements the multi-server session pipeline: per-type
// protocol adapters, pure payload normalizers, and the concurrent fetch
// coordinator that joins them into one FetchResult.
package fetch

import (
	"context"
	"net/http"

	"github.com/gthrift/activestreams-unraid/internal/models"
)

// Options controls normalization for one fetch cycle.
type Options struct {
	// ShowEpisodes inserts season/episode numbering into episode titles.
	ShowEpisodes bool
}

// Adapter translates one server type's wire protocol. BuildRequest produces
// the "list active sessions" request; Normalize is a pure function from a
// successful response body to zero or more Streams. Adding a server type
// means adding an Adapter variant; the coordinator stays untouched.
type Adapter interface {
	BuildRequest(ctx context.Context, server *models.ServerDescriptor) (*http.Request, error)
	Normalize(server *models.ServerDescriptor, body []byte, opts Options) ([]models.Stream, error)
}

// ForType returns the adapter for a server type, or false for types this
// build does not speak.
func ForType(t models.ServerType) (Adapter, bool) {
	switch t {
	case models.ServerTypePlex:
		return plexAdapter{}, true
	case models.ServerTypeEmby:
		return mediaBrowserAdapter{flavor: models.ServerTypeEmby}, true
	case models.ServerTypeJellyfin:
		return mediaBrowserAdapter{flavor: models.ServerTypeJellyfin}, true
	default:
		return nil, false
	}
}

// unknownValue is the placeholder for absent user/device/title fields.
// Sessions missing sub-fields are still emitted with placeholders rather
// than dropped.
const unknownValue = "Unknown"

// clampSeconds converts a source time value to non-negative seconds.
// Negative and missing source fields both normalize to 0.
func clampSeconds(raw int64, perSecond int64) float64 {
	if raw <= 0 {
		return 0
	}
	return float64(raw) / float64(perSecond)
}
