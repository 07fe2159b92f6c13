// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/gthrift/activestreams-unraid/internal/models"
)

// plexAdapter speaks the Plex Media Server session protocol.
//
// Endpoint: GET {base}/status/sessions?X-Plex-Token={token}
// Response: MediaContainer.Metadata array; absent means no sessions.
type plexAdapter struct{}

func (plexAdapter) BuildRequest(ctx context.Context, server *models.ServerDescriptor) (*http.Request, error) {
	reqURL := fmt.Sprintf("%s/status/sessions?X-Plex-Token=%s",
		server.BaseURL(), url.QueryEscape(server.Credential))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("X-Plex-Token", server.Credential)
	req.Header.Set("Accept", "application/json")

	return req, nil
}

func (plexAdapter) Normalize(server *models.ServerDescriptor, body []byte, opts Options) ([]models.Stream, error) {
	var resp models.PlexSessionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}

	sessions := resp.MediaContainer.Metadata
	streams := make([]models.Stream, 0, len(sessions))
	for i := range sessions {
		streams = append(streams, normalizePlexSession(server, &sessions[i], opts))
	}
	return streams, nil
}

func normalizePlexSession(server *models.ServerDescriptor, s *models.PlexSession, opts Options) models.Stream {
	stream := models.Stream{
		ServerName:      server.Name,
		ServerType:      server.Type,
		Title:           plexTitle(s, opts),
		User:            unknownValue,
		Device:          unknownValue,
		PlaybackState:   models.PlaybackPlaying,
		ProgressSeconds: clampSeconds(s.ViewOffset, 1000),
		DurationSeconds: clampSeconds(s.Duration, 1000),
	}

	if s.User != nil && s.User.Title != "" {
		stream.User = s.User.Title
	}
	if s.Player != nil {
		switch {
		case s.Player.Device != "":
			stream.Device = s.Player.Device
		case s.Player.Product != "":
			stream.Device = s.Player.Product
		}
		if s.Player.State == "paused" {
			stream.PlaybackState = models.PlaybackPaused
		}
	}

	if ts := s.TranscodeSession; ts != nil {
		stream.IsTranscoding = ts.VideoDecision == "transcode" || ts.AudioDecision == "transcode"
		if stream.IsTranscoding {
			stream.TranscodeDetailLines = plexTranscodeDetails(s, ts)
		}
	}

	return stream
}

// plexTitle composes the display title. Episodes get "{show} - {title}",
// optionally with un-padded "S{season}E{episode}" in the middle (Plex
// reports raw index numbers; season 0 is Specials and is still valid).
func plexTitle(s *models.PlexSession, opts Options) string {
	if s.GrandparentTitle == "" {
		if s.Title == "" {
			return unknownValue
		}
		return s.Title
	}

	if opts.ShowEpisodes && s.ParentIndex != nil && s.Index != nil {
		return fmt.Sprintf("%s - S%dE%d - %s", s.GrandparentTitle, *s.ParentIndex, *s.Index, s.Title)
	}
	return fmt.Sprintf("%s - %s", s.GrandparentTitle, s.Title)
}

// plexTranscodeDetails derives the three Stream/Video/Audio detail lines
// for an active transcode. Source facts come from the first Media entry,
// falling back to the transcode session's source codec fields.
func plexTranscodeDetails(s *models.PlexSession, ts *models.PlexTranscodeSession) []string {
	var src *models.PlexMedia
	if len(s.Media) > 0 {
		src = &s.Media[0]
	}

	lines := make([]string, 0, 3)

	// Container transition with throttle/speed status.
	var b strings.Builder
	b.WriteString("Stream: ")
	b.WriteString(orPlaceholder(srcContainer(src)))
	if src != nil && src.Bitrate > 0 {
		fmt.Fprintf(&b, " (%s)", formatKbps(src.Bitrate))
	}
	b.WriteString(" → ")
	b.WriteString(orPlaceholder(ts.Container))
	switch {
	case ts.Throttled:
		b.WriteString(" (throttled)")
	case ts.Speed > 0:
		fmt.Fprintf(&b, " (%.1fx)", ts.Speed)
	}
	lines = append(lines, b.String())

	// Video transition, or the direct decision when video is untouched.
	if ts.VideoDecision == "transcode" {
		video := "Video: "
		if src != nil && src.VideoResolution != "" {
			video += formatResolution(src.VideoResolution) + " "
		}
		video += orPlaceholder(firstNonEmpty(ts.SourceVideoCodec, srcVideoCodec(src)))
		video += " → " + orPlaceholder(ts.VideoCodec)
		if ts.HwRequested || ts.HwEncoding != "" || ts.HwDecoding != "" {
			video += " [HW]"
		}
		lines = append(lines, video)
	} else {
		lines = append(lines, "Video: Direct "+decisionWord(ts.VideoDecision))
	}

	// Audio transition, or the direct decision.
	if ts.AudioDecision == "transcode" {
		audio := "Audio: " + orPlaceholder(firstNonEmpty(ts.SourceAudioCodec, srcAudioCodec(src)))
		if src != nil && src.AudioChannels > 0 {
			audio += fmt.Sprintf(" %dch", src.AudioChannels)
		}
		audio += " → " + orPlaceholder(ts.AudioCodec)
		if ts.AudioChannels > 0 {
			audio += fmt.Sprintf(" %dch", ts.AudioChannels)
		}
		lines = append(lines, audio)
	} else {
		lines = append(lines, "Audio: Direct "+decisionWord(ts.AudioDecision))
	}

	return lines
}

func srcContainer(m *models.PlexMedia) string {
	if m == nil {
		return ""
	}
	return m.Container
}

func srcVideoCodec(m *models.PlexMedia) string {
	if m == nil {
		return ""
	}
	return m.VideoCodec
}

func srcAudioCodec(m *models.PlexMedia) string {
	if m == nil {
		return ""
	}
	return m.AudioCodec
}

// decisionWord renders a Plex stream decision for the "Direct {decision}"
// form, defaulting to "play" when the server omits it.
func decisionWord(decision string) string {
	if decision == "" {
		return "play"
	}
	return decision
}

// formatResolution maps Plex's videoResolution values ("4k", "1080", "720",
// "sd") onto display form.
func formatResolution(res string) string {
	switch strings.ToLower(res) {
	case "4k":
		return "4K"
	case "sd":
		return "SD"
	default:
		return res + "p"
	}
}

// formatKbps renders a kilobits-per-second value, switching to Mbps at
// 1000 kbps.
func formatKbps(kbps int) string {
	if kbps >= 1000 {
		return fmt.Sprintf("%.1f Mbps", float64(kbps)/1000)
	}
	return fmt.Sprintf("%d kbps", kbps)
}

func orPlaceholder(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
