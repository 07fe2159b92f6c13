// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

package fetch

import (
	"context"
	"testing"

	"github.com/gthrift/activestreams-unraid/internal/models"
)

func embyServer() *models.ServerDescriptor {
	return &models.ServerDescriptor{
		Type:       models.ServerTypeEmby,
		Name:       "Den",
		Host:       "emby.local",
		Port:       8096,
		Credential: "emby-key",
	}
}

func jellyfinServer() *models.ServerDescriptor {
	return &models.ServerDescriptor{
		Type:       models.ServerTypeJellyfin,
		Name:       "Attic",
		Host:       "jf.local",
		Port:       8096,
		Credential: "jf-key",
	}
}

func TestEmbyBuildRequest(t *testing.T) {
	t.Parallel()

	adapter := mediaBrowserAdapter{flavor: models.ServerTypeEmby}
	req, err := adapter.BuildRequest(context.Background(), embyServer())
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}

	if req.URL.Path != "/emby/Sessions" {
		t.Errorf("path = %q, want /emby/Sessions", req.URL.Path)
	}
	if got := req.URL.Query().Get("api_key"); got != "emby-key" {
		t.Errorf("api_key = %q, want emby-key", got)
	}
	if got := req.Header.Get("X-Emby-Token"); got != "" {
		t.Errorf("Emby request should not carry X-Emby-Token header, got %q", got)
	}
}

func TestJellyfinBuildRequest(t *testing.T) {
	t.Parallel()

	adapter := mediaBrowserAdapter{flavor: models.ServerTypeJellyfin}
	req, err := adapter.BuildRequest(context.Background(), jellyfinServer())
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}

	if req.URL.Path != "/Sessions" {
		t.Errorf("path = %q, want /Sessions", req.URL.Path)
	}
	if req.URL.RawQuery != "" {
		t.Errorf("Jellyfin request should not carry credentials in the URL, got %q", req.URL.RawQuery)
	}
	if got := req.Header.Get("X-Emby-Token"); got != "jf-key" {
		t.Errorf("X-Emby-Token = %q, want jf-key", got)
	}
}

func TestMediaBrowserNormalizeSkipsIdleSessions(t *testing.T) {
	t.Parallel()

	// Two idle dashboard sessions and one playing.
	body := []byte(`[
		{"Id":"a","UserName":"idle1"},
		{"Id":"b","NowPlayingItem":{"Name":"Movie","RunTimeTicks":54450000000},
		 "UserName":"carol","DeviceName":"Tablet",
		 "PlayState":{"PositionTicks":3300000000,"PlayMethod":"DirectPlay"}},
		{"Id":"c","UserName":"idle2"}
	]`)

	adapter := mediaBrowserAdapter{flavor: models.ServerTypeJellyfin}
	streams, err := adapter.Normalize(jellyfinServer(), body, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(streams) != 1 {
		t.Fatalf("got %d streams, want 1", len(streams))
	}

	s := streams[0]
	if s.Title != "Movie" || s.User != "carol" || s.Device != "Tablet" {
		t.Errorf("stream = %q/%q/%q", s.Title, s.User, s.Device)
	}
	if s.ProgressSeconds != 330 || s.DurationSeconds != 5445 {
		t.Errorf("tick conversion: progress/duration = %v/%v, want 330/5445", s.ProgressSeconds, s.DurationSeconds)
	}
	if s.IsTranscoding {
		t.Error("DirectPlay marked transcoding")
	}
}

func TestMediaBrowserNormalizeDefaults(t *testing.T) {
	t.Parallel()

	body := []byte(`[{"Id":"a","NowPlayingItem":{}}]`)

	streams, err := mediaBrowserAdapter{flavor: models.ServerTypeEmby}.Normalize(embyServer(), body, Options{})
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
	if s.PlaybackState != models.PlaybackPlaying {
		t.Errorf("state = %q, want playing", s.PlaybackState)
	}
}

func TestMediaBrowserNormalizeInvalidJSON(t *testing.T) {
	t.Parallel()

	adapter := mediaBrowserAdapter{flavor: models.ServerTypeEmby}
	if _, err := adapter.Normalize(embyServer(), []byte(`{"not":"an array"}`), Options{}); err == nil {
		t.Fatal("expected error for non-array body")
	}
}

func TestMediaBrowserPausedState(t *testing.T) {
	t.Parallel()

	body := []byte(`[{"NowPlayingItem":{"Name":"M"},"PlayState":{"IsPaused":true}}]`)

	streams, err := mediaBrowserAdapter{flavor: models.ServerTypeJellyfin}.Normalize(jellyfinServer(), body, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if streams[0].PlaybackState != models.PlaybackPaused {
		t.Errorf("state = %q, want paused", streams[0].PlaybackState)
	}
}

func TestMediaBrowserTitleComposition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		item models.MediaBrowserNowPlayingItem
		opts Options
		want string
	}{
		{
			name: "movie",
			item: models.MediaBrowserNowPlayingItem{Name: "Big Movie"},
			want: "Big Movie",
		},
		{
			name: "episode without numbering",
			item: models.MediaBrowserNowPlayingItem{Name: "Pilot", SeriesName: "Some Show"},
			want: "Some Show - Pilot",
		},
		{
			name: "episode with zero padded numbering",
			item: models.MediaBrowserNowPlayingItem{
				Name: "Pilot", SeriesName: "Some Show",
				ParentIndexNumber: intPtr(1), IndexNumber: intPtr(5),
			},
			opts: Options{ShowEpisodes: true},
			want: "Some Show - S01E05 - Pilot",
		},
		{
			name: "double digit numbering",
			item: models.MediaBrowserNowPlayingItem{
				Name: "Finale", SeriesName: "Some Show",
				ParentIndexNumber: intPtr(12), IndexNumber: intPtr(24),
			},
			opts: Options{ShowEpisodes: true},
			want: "Some Show - S12E24 - Finale",
		},
		{
			name: "empty item",
			item: models.MediaBrowserNowPlayingItem{},
			want: "Unknown",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := mediaBrowserTitle(&tc.item, tc.opts); got != tc.want {
				t.Errorf("mediaBrowserTitle = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMediaBrowserTranscodeDecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want bool
	}{
		{
			name: "real transcode",
			body: `[{"NowPlayingItem":{"Name":"M"},
				"PlayState":{"PlayMethod":"Transcode"},
				"TranscodingInfo":{"IsVideoDirect":false,"IsAudioDirect":true}}]`,
			want: true,
		},
		{
			name: "remux both direct",
			body: `[{"NowPlayingItem":{"Name":"M"},
				"PlayState":{"PlayMethod":"Transcode"},
				"TranscodingInfo":{"IsVideoDirect":true,"IsAudioDirect":true}}]`,
			want: false,
		},
		{
			name: "transcode method without info",
			body: `[{"NowPlayingItem":{"Name":"M"},
				"PlayState":{"PlayMethod":"Transcode"}}]`,
			want: false,
		},
		{
			name: "direct stream",
			body: `[{"NowPlayingItem":{"Name":"M"},
				"PlayState":{"PlayMethod":"DirectStream"},
				"TranscodingInfo":{"IsVideoDirect":false,"IsAudioDirect":false}}]`,
			want: false,
		},
	}

	adapter := mediaBrowserAdapter{flavor: models.ServerTypeEmby}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			streams, err := adapter.Normalize(embyServer(), []byte(tc.body), Options{})
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if len(streams) != 1 {
				t.Fatalf("got %d streams, want 1", len(streams))
			}
			if streams[0].IsTranscoding != tc.want {
				t.Errorf("IsTranscoding = %v, want %v", streams[0].IsTranscoding, tc.want)
			}
		})
	}
}

func TestMediaBrowserTranscodeDetailLines(t *testing.T) {
	t.Parallel()

	item := models.MediaBrowserNowPlayingItem{
		Name:      "M",
		Container: "mkv",
		MediaStreams: []models.MediaBrowserStream{
			{Type: "Video", Codec: "hevc", Height: 2160, BitRate: 24_500_000},
			{Type: "Audio", Codec: "truehd", Channels: 8},
		},
	}
	ti := models.MediaBrowserTranscodingInfo{
		IsVideoDirect:    false,
		IsAudioDirect:    false,
		Container:        "ts",
		VideoCodec:       "h264",
		AudioCodec:       "aac",
		AudioChannels:    2,
		Bitrate:          8_000_000,
		TranscodeReasons: []string{"ContainerBitrateExceedsLimit", "AudioCodecNotSupported"},
	}

	lines := mediaBrowserTranscodeDetails(&item, &ti)
	want := []string{
		"Stream: mkv (24.5 Mbps) → ts (8.0 Mbps)",
		"Video: 4K hevc → h264",
		"Audio: truehd 8ch → aac 2ch",
		"Reason: ContainerBitrateExceedsLimit, AudioCodecNotSupported",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %v, want %d", len(lines), lines, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestMediaBrowserAudioOnlyTranscodeDetails(t *testing.T) {
	t.Parallel()

	item := models.MediaBrowserNowPlayingItem{
		Name:      "M",
		Container: "mkv",
		MediaStreams: []models.MediaBrowserStream{
			{Type: "Audio", Codec: "dts", Channels: 6},
		},
	}
	ti := models.MediaBrowserTranscodingInfo{
		IsVideoDirect: true,
		IsAudioDirect: false,
		Container:     "mkv",
		AudioCodec:    "aac",
		AudioChannels: 2,
	}

	lines := mediaBrowserTranscodeDetails(&item, &ti)
	if len(lines) != 3 {
		t.Fatalf("got %d lines %v, want 3", len(lines), lines)
	}
	if lines[1] != "Video: Direct" {
		t.Errorf("video line = %q", lines[1])
	}
	if lines[2] != "Audio: dts 6ch → aac 2ch" {
		t.Errorf("audio line = %q", lines[2])
	}
}

func TestFormatHeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		height int
		want   string
	}{
		{2160, "4K"},
		{1080, "1080p"},
		{720, "720p"},
		{480, "SD"},
	}
	for _, tc := range tests {
		if got := formatHeight(tc.height); got != tc.want {
			t.Errorf("formatHeight(%d) = %q, want %q", tc.height, got, tc.want)
		}
	}
}

func TestFormatBps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bps  int
		want string
	}{
		{320_000, "320 kbps"},
		{1_000_000, "1.0 Mbps"},
		{24_500_000, "24.5 Mbps"},
	}
	for _, tc := range tests {
		if got := formatBps(tc.bps); got != tc.want {
			t.Errorf("formatBps(%d) = %q, want %q", tc.bps, got, tc.want)
		}
	}
}
