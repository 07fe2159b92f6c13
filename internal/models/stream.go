// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

package models

// PlaybackState is the coarse play/pause state of a stream.
type PlaybackState string

// Playback states. Buffering and other transient states collapse into
// Playing; only an explicit pause is reported as Paused.
const (
	PlaybackPlaying PlaybackState = "playing"
	PlaybackPaused  PlaybackState = "paused"
)

// Stream is one normalized, presentation-ready playback session. Every
// adapter maps its server's session schema into this record.
type Stream struct {
	ServerName string     `json:"server_name"`
	ServerType ServerType `json:"server_type"`

	Title  string `json:"title"`
	User   string `json:"user"`
	Device string `json:"device"`

	PlaybackState PlaybackState `json:"playback_state"`

	// ProgressSeconds and DurationSeconds are clamped to >= 0 even when
	// the source field is negative or missing.
	ProgressSeconds float64 `json:"progress_seconds"`
	DurationSeconds float64 `json:"duration_seconds"`

	IsTranscoding bool `json:"is_transcoding"`
	// TranscodeDetailLines describes the stream/video/audio transitions in
	// human-readable form. Empty when the session is not transcoding.
	TranscodeDetailLines []string `json:"transcode_detail_lines,omitempty"`
}

// FetchError is a per-server failure: unreachable host, non-2xx response,
// or an unparseable body. It never aborts the cycle it occurred in.
type FetchError struct {
	ServerName string `json:"server_name"`
	Message    string `json:"message"`
}

// FetchResult is the output of one fetch cycle. Streams and Errors follow
// server iteration order in the registry snapshot, not completion order.
type FetchResult struct {
	Streams []Stream     `json:"streams"`
	Errors  []FetchError `json:"errors"`
}
