// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

package fetch

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/gthrift/activestreams-unraid/internal/models"
)

func plexServer() *models.ServerDescriptor {
	return &models.ServerDescriptor{
		Type:       models.ServerTypePlex,
		Name:       "Living Room",
		Host:       "plex.local",
		Port:       32400,
		Credential: "secret-token",
	}
}

func intPtr(v int) *int { return &v }

func TestPlexBuildRequest(t *testing.T) {
	t.Parallel()

	adapter := plexAdapter{}
	req, err := adapter.BuildRequest(context.Background(), plexServer())
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}

	if req.Method != "GET" {
		t.Errorf("method = %q, want GET", req.Method)
	}
	if req.URL.Path != "/status/sessions" {
		t.Errorf("path = %q, want /status/sessions", req.URL.Path)
	}
	if got := req.URL.Query().Get("X-Plex-Token"); got != "secret-token" {
		t.Errorf("token query param = %q, want secret-token", got)
	}
	if got := req.Header.Get("X-Plex-Token"); got != "secret-token" {
		t.Errorf("token header = %q, want secret-token", got)
	}
	if got := req.Header.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q, want application/json", got)
	}
}

func TestPlexNormalizeEmptyContainer(t *testing.T) {
	t.Parallel()

	adapter := plexAdapter{}
	streams, err := adapter.Normalize(plexServer(), []byte(`{"MediaContainer":{"size":0}}`), Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(streams) != 0 {
		t.Errorf("got %d streams, want 0", len(streams))
	}
}

func TestPlexNormalizeInvalidJSON(t *testing.T) {
	t.Parallel()

	adapter := plexAdapter{}
	if _, err := adapter.Normalize(plexServer(), []byte(`<html>nope</html>`), Options{}); err == nil {
		t.Fatal("expected error for non-JSON body")
	}
}

func TestPlexNormalizeMovie(t *testing.T) {
	t.Parallel()

	body := []byte(`{"MediaContainer":{"size":1,"Metadata":[{
		"type":"movie","title":"Big Movie",
		"User":{"title":"alice"},
		"Player":{"device":"Shield","state":"playing"},
		"viewOffset":330000,"duration":5445000
	}]}}`)

	streams, err := plexAdapter{}.Normalize(plexServer(), body, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(streams) != 1 {
		t.Fatalf("got %d streams, want 1", len(streams))
	}

	s := streams[0]
	if s.ServerName != "Living Room" || s.ServerType != models.ServerTypePlex {
		t.Errorf("server identity = %q/%q", s.ServerName, s.ServerType)
	}
	if s.Title != "Big Movie" {
		t.Errorf("title = %q", s.Title)
	}
	if s.User != "alice" || s.Device != "Shield" {
		t.Errorf("user/device = %q/%q", s.User, s.Device)
	}
	if s.PlaybackState != models.PlaybackPlaying {
		t.Errorf("state = %q, want playing", s.PlaybackState)
	}
	if s.ProgressSeconds != 330 || s.DurationSeconds != 5445 {
		t.Errorf("progress/duration = %v/%v, want 330/5445", s.ProgressSeconds, s.DurationSeconds)
	}
	if s.IsTranscoding {
		t.Error("movie without TranscodeSession marked transcoding")
	}
}

func TestPlexNormalizeDefaults(t *testing.T) {
	t.Parallel()

	// A sparse session still yields a stream with placeholders.
	body := []byte(`{"MediaContainer":{"size":1,"Metadata":[{"type":"movie"}]}}`)

	streams, err := plexAdapter{}.Normalize(plexServer(), body, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(streams) != 1 {
		t.Fatalf("got %d streams, want 1", len(streams))
	}

	s := streams[0]
	if s.Title != "Unknown" || s.User != "Unknown" || s.Device != "Unknown" {
		t.Errorf("placeholders = %q/%q/%q, want Unknown x3", s.Title, s.User, s.Device)
	}
	if s.ProgressSeconds != 0 || s.DurationSeconds != 0 {
		t.Errorf("progress/duration = %v/%v, want 0/0", s.ProgressSeconds, s.DurationSeconds)
	}
}

func TestPlexNormalizeNegativeOffsetsClamp(t *testing.T) {
	t.Parallel()

	body := []byte(`{"MediaContainer":{"Metadata":[{"title":"X","viewOffset":-5000,"duration":-100}]}}`)

	streams, err := plexAdapter{}.Normalize(plexServer(), body, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if streams[0].ProgressSeconds != 0 || streams[0].DurationSeconds != 0 {
		t.Errorf("clamp failed: %v/%v", streams[0].ProgressSeconds, streams[0].DurationSeconds)
	}
}

func TestPlexNormalizePausedState(t *testing.T) {
	t.Parallel()

	body := []byte(`{"MediaContainer":{"Metadata":[{"title":"X","Player":{"state":"paused"}}]}}`)

	streams, err := plexAdapter{}.Normalize(plexServer(), body, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if streams[0].PlaybackState != models.PlaybackPaused {
		t.Errorf("state = %q, want paused", streams[0].PlaybackState)
	}
}

func TestPlexTitleComposition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		session models.PlexSession
		opts    Options
		want    string
	}{
		{
			name:    "movie title",
			session: models.PlexSession{Title: "Big Movie"},
			want:    "Big Movie",
		},
		{
			name:    "episode without numbering",
			session: models.PlexSession{Title: "Pilot", GrandparentTitle: "Some Show"},
			want:    "Some Show - Pilot",
		},
		{
			name: "episode with numbering",
			session: models.PlexSession{
				Title: "Pilot", GrandparentTitle: "Some Show",
				ParentIndex: intPtr(1), Index: intPtr(5),
			},
			opts: Options{ShowEpisodes: true},
			want: "Some Show - S1E5 - Pilot",
		},
		{
			name: "specials season zero",
			session: models.PlexSession{
				Title: "Bloopers", GrandparentTitle: "Some Show",
				ParentIndex: intPtr(0), Index: intPtr(3),
			},
			opts: Options{ShowEpisodes: true},
			want: "Some Show - S0E3 - Bloopers",
		},
		{
			name: "numbering requested but missing indexes",
			session: models.PlexSession{
				Title: "Pilot", GrandparentTitle: "Some Show",
			},
			opts: Options{ShowEpisodes: true},
			want: "Some Show - Pilot",
		},
		{
			name:    "empty title",
			session: models.PlexSession{},
			want:    "Unknown",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := plexTitle(&tc.session, tc.opts); got != tc.want {
				t.Errorf("plexTitle = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPlexTranscodeDecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		video string
		audio string
		want  bool
	}{
		{"both transcode", "transcode", "transcode", true},
		{"video only", "transcode", "copy", true},
		{"audio only", "copy", "transcode", true},
		{"both copy is remux", "copy", "copy", false},
		{"direct play", "direct play", "direct play", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := models.PlexSession{
				Title: "X",
				TranscodeSession: &models.PlexTranscodeSession{
					VideoDecision: tc.video,
					AudioDecision: tc.audio,
				},
			}
			stream := normalizePlexSession(plexServer(), &s, Options{})
			if stream.IsTranscoding != tc.want {
				t.Errorf("IsTranscoding = %v, want %v", stream.IsTranscoding, tc.want)
			}
			if !tc.want && stream.TranscodeDetailLines != nil {
				t.Errorf("detail lines on non-transcode: %v", stream.TranscodeDetailLines)
			}
		})
	}
}

func TestPlexTranscodeDetailLines(t *testing.T) {
	t.Parallel()

	s := models.PlexSession{
		Title: "X",
		Media: []models.PlexMedia{{
			Container:       "mkv",
			Bitrate:         24500,
			VideoResolution: "4k",
			VideoCodec:      "hevc",
			AudioCodec:      "truehd",
			AudioChannels:   8,
		}},
		TranscodeSession: &models.PlexTranscodeSession{
			VideoDecision: "transcode",
			AudioDecision: "transcode",
			Container:     "mp4",
			VideoCodec:    "h264",
			AudioCodec:    "aac",
			AudioChannels: 2,
			Speed:         1.5,
			HwRequested:   true,
		},
	}

	stream := normalizePlexSession(plexServer(), &s, Options{})
	if !stream.IsTranscoding {
		t.Fatal("expected transcoding")
	}

	want := []string{
		"Stream: mkv (24.5 Mbps) → mp4 (1.5x)",
		"Video: 4K hevc → h264 [HW]",
		"Audio: truehd 8ch → aac 2ch",
	}
	if len(stream.TranscodeDetailLines) != len(want) {
		t.Fatalf("got %d lines %v, want %d", len(stream.TranscodeDetailLines), stream.TranscodeDetailLines, len(want))
	}
	for i := range want {
		if stream.TranscodeDetailLines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, stream.TranscodeDetailLines[i], want[i])
		}
	}
}

func TestPlexTranscodeAudioOnlyDetails(t *testing.T) {
	t.Parallel()

	s := models.PlexSession{
		Title: "X",
		TranscodeSession: &models.PlexTranscodeSession{
			VideoDecision:    "copy",
			AudioDecision:    "transcode",
			Container:        "mkv",
			SourceAudioCodec: "dts",
			AudioCodec:       "aac",
			Throttled:        true,
		},
	}

	stream := normalizePlexSession(plexServer(), &s, Options{})
	lines := stream.TranscodeDetailLines
	if len(lines) != 3 {
		t.Fatalf("got %d lines %v, want 3", len(lines), lines)
	}
	if !strings.Contains(lines[0], "(throttled)") {
		t.Errorf("stream line missing throttled marker: %q", lines[0])
	}
	if lines[1] != "Video: Direct copy" {
		t.Errorf("video line = %q", lines[1])
	}
	if lines[2] != "Audio: dts → aac" {
		t.Errorf("audio line = %q", lines[2])
	}
}

func TestPlexNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	body := []byte(`{"MediaContainer":{"Metadata":[{
		"title":"Pilot","grandparentTitle":"Some Show",
		"parentIndex":2,"index":7,
		"User":{"title":"bob"},"Player":{"device":"TV","state":"paused"},
		"viewOffset":60000,"duration":1800000
	}]}}`)

	opts := Options{ShowEpisodes: true}
	first, err := plexAdapter{}.Normalize(plexServer(), body, opts)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	second, err := plexAdapter{}.Normalize(plexServer(), body, opts)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalize not deterministic: %+v vs %+v", first, second)
	}
	if len(first) != 1 || first[0].Title != "Some Show - S2E7 - Pilot" {
		t.Errorf("unexpected normalization: %+v", first)
	}
}

func TestFormatKbps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kbps int
		want string
	}{
		{320, "320 kbps"},
		{999, "999 kbps"},
		{1000, "1.0 Mbps"},
		{24500, "24.5 Mbps"},
	}
	for _, tc := range tests {
		if got := formatKbps(tc.kbps); got != tc.want {
			t.Errorf("formatKbps(%d) = %q, want %q", tc.kbps, got, tc.want)
		}
	}
}

func TestFormatResolution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"4k", "4K"},
		{"sd", "SD"},
		{"1080", "1080p"},
		{"720", "720p"},
	}
	for _, tc := range tests {
		if got := formatResolution(tc.in); got != tc.want {
			t.Errorf("formatResolution(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
