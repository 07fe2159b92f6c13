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

// mediaBrowserAdapter speaks the Emby/Jellyfin session protocol. The two
// servers share the MediaBrowser API lineage and differ only in endpoint
// and authentication style:
//
//	Emby:     GET {base}/emby/Sessions?api_key={key}
//	Jellyfin: GET {base}/Sessions with X-Emby-Token header
//
// The response is a top-level session array. Sessions without a
// NowPlayingItem are idle and skipped.
type mediaBrowserAdapter struct {
	flavor models.ServerType
}

// ticksPerSecond converts MediaBrowser ticks (100ns units) to seconds.
const ticksPerSecond = 10_000_000

func (a mediaBrowserAdapter) BuildRequest(ctx context.Context, server *models.ServerDescriptor) (*http.Request, error) {
	var reqURL string
	if a.flavor == models.ServerTypeEmby {
		reqURL = fmt.Sprintf("%s/emby/Sessions?api_key=%s",
			server.BaseURL(), url.QueryEscape(server.Credential))
	} else {
		reqURL = server.BaseURL() + "/Sessions"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if a.flavor != models.ServerTypeEmby {
		req.Header.Set("X-Emby-Token", server.Credential)
	}
	req.Header.Set("Accept", "application/json")

	return req, nil
}

func (a mediaBrowserAdapter) Normalize(server *models.ServerDescriptor, body []byte, opts Options) ([]models.Stream, error) {
	var sessions []models.MediaBrowserSession
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}

	streams := make([]models.Stream, 0, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		if s.NowPlayingItem == nil {
			// Idle session, not an error.
			continue
		}
		streams = append(streams, normalizeMediaBrowserSession(server, s, opts))
	}
	return streams, nil
}

func normalizeMediaBrowserSession(server *models.ServerDescriptor, s *models.MediaBrowserSession, opts Options) models.Stream {
	item := s.NowPlayingItem

	stream := models.Stream{
		ServerName:      server.Name,
		ServerType:      server.Type,
		Title:           mediaBrowserTitle(item, opts),
		User:            unknownValue,
		Device:          unknownValue,
		PlaybackState:   models.PlaybackPlaying,
		DurationSeconds: clampSeconds(item.RunTimeTicks, ticksPerSecond),
	}

	if s.UserName != "" {
		stream.User = s.UserName
	}
	if s.DeviceName != "" {
		stream.Device = s.DeviceName
	}

	if ps := s.PlayState; ps != nil {
		stream.ProgressSeconds = clampSeconds(ps.PositionTicks, ticksPerSecond)
		if ps.IsPaused {
			stream.PlaybackState = models.PlaybackPaused
		}

		// A pure container remux (both streams direct) is not a transcode.
		if ps.PlayMethod == "Transcode" {
			if ti := s.TranscodingInfo; ti != nil && (!ti.IsVideoDirect || !ti.IsAudioDirect) {
				stream.IsTranscoding = true
				stream.TranscodeDetailLines = mediaBrowserTranscodeDetails(item, ti)
			}
		}
	}

	return stream
}

// mediaBrowserTitle composes the display title. Episodes get
// "{series} - {name}", optionally with zero-padded "SxxEyy" numbering.
func mediaBrowserTitle(item *models.MediaBrowserNowPlayingItem, opts Options) string {
	if item.SeriesName == "" {
		if item.Name == "" {
			return unknownValue
		}
		return item.Name
	}

	if opts.ShowEpisodes && item.ParentIndexNumber != nil && item.IndexNumber != nil {
		return fmt.Sprintf("%s - S%02dE%02d - %s",
			item.SeriesName, *item.ParentIndexNumber, *item.IndexNumber, item.Name)
	}
	return fmt.Sprintf("%s - %s", item.SeriesName, item.Name)
}

// mediaBrowserTranscodeDetails derives Stream/Video/Audio detail lines from
// the source MediaStreams and the TranscodingInfo target, plus a Reason
// line when the server explains its decision.
func mediaBrowserTranscodeDetails(item *models.MediaBrowserNowPlayingItem, ti *models.MediaBrowserTranscodingInfo) []string {
	srcVideo := firstStreamOfType(item.MediaStreams, "Video")
	srcAudio := firstStreamOfType(item.MediaStreams, "Audio")

	lines := make([]string, 0, 4)

	var b strings.Builder
	b.WriteString("Stream: ")
	b.WriteString(orPlaceholder(item.Container))
	if srcVideo != nil && srcVideo.BitRate > 0 {
		fmt.Fprintf(&b, " (%s)", formatBps(srcVideo.BitRate))
	}
	b.WriteString(" → ")
	b.WriteString(orPlaceholder(ti.Container))
	if ti.Bitrate > 0 {
		fmt.Fprintf(&b, " (%s)", formatBps(ti.Bitrate))
	}
	lines = append(lines, b.String())

	if ti.IsVideoDirect {
		lines = append(lines, "Video: Direct")
	} else {
		video := "Video: "
		if srcVideo != nil {
			if srcVideo.Height > 0 {
				video += formatHeight(srcVideo.Height) + " "
			}
			video += orPlaceholder(srcVideo.Codec)
		} else {
			video += "?"
		}
		video += " → " + orPlaceholder(ti.VideoCodec)
		lines = append(lines, video)
	}

	if ti.IsAudioDirect {
		lines = append(lines, "Audio: Direct")
	} else {
		audio := "Audio: "
		if srcAudio != nil {
			audio += orPlaceholder(srcAudio.Codec)
			if srcAudio.Channels > 0 {
				audio += fmt.Sprintf(" %dch", srcAudio.Channels)
			}
		} else {
			audio += "?"
		}
		audio += " → " + orPlaceholder(ti.AudioCodec)
		if ti.AudioChannels > 0 {
			audio += fmt.Sprintf(" %dch", ti.AudioChannels)
		}
		lines = append(lines, audio)
	}

	if len(ti.TranscodeReasons) > 0 {
		lines = append(lines, "Reason: "+strings.Join(ti.TranscodeReasons, ", "))
	}

	return lines
}

func firstStreamOfType(streams []models.MediaBrowserStream, streamType string) *models.MediaBrowserStream {
	for i := range streams {
		if streams[i].Type == streamType {
			return &streams[i]
		}
	}
	return nil
}

// formatHeight maps a video height in pixels onto display resolution.
func formatHeight(height int) string {
	switch {
	case height >= 2160:
		return "4K"
	case height >= 1080:
		return "1080p"
	case height >= 720:
		return "720p"
	default:
		return "SD"
	}
}

// formatBps renders a bits-per-second value, switching to Mbps at 1 Mbps.
// MediaBrowser reports raw bps where Plex reports kbps.
func formatBps(bps int) string {
	if bps >= 1_000_000 {
		return fmt.Sprintf("%.1f Mbps", float64(bps)/1_000_000)
	}
	return fmt.Sprintf("%d kbps", bps/1000)
}
