// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

// Package render turns a FetchResult into the HTML fragment the dashboard
// polls. The structured FetchResult stays available independently of any
// rendering; this package is one terminal form, the JSON API is another.
package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/gthrift/activestreams-unraid/internal/models"
)

// EmptyMessage is the informational empty state shown when there is
// nothing to render: no servers configured, or no streams and no errors.
const EmptyMessage = "No active streams"

// playGlyph and pauseGlyph are the playback state icons.
const (
	playGlyph  = "&#9654;"          // ▶
	pauseGlyph = "&#10074;&#10074;" // ❚❚
)

// FormatTime renders seconds as "H:MM:SS" when at least an hour, else
// "M:SS". Negative input clamps to "0:00"; fractional seconds truncate.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)

	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// Fragment renders the result as an HTML fragment: one row per stream in
// registry order, color-coded by server type, with a transcode badge
// carrying the detail lines as its tooltip. With zero streams it renders
// either the joined error messages or the informational empty state.
func Fragment(result models.FetchResult) string {
	var b strings.Builder

	if len(result.Streams) == 0 {
		if len(result.Errors) == 0 {
			fmt.Fprintf(&b, `<div class="streams-empty">%s</div>`, EmptyMessage)
			return b.String()
		}
		b.WriteString(`<div class="streams-errors">`)
		for _, e := range result.Errors {
			fmt.Fprintf(&b, `<div class="stream-error">%s: %s</div>`,
				html.EscapeString(e.ServerName), html.EscapeString(e.Message))
		}
		b.WriteString(`</div>`)
		return b.String()
	}

	b.WriteString(`<div class="streams">`)
	for i := range result.Streams {
		writeStreamRow(&b, &result.Streams[i])
	}
	for _, e := range result.Errors {
		fmt.Fprintf(&b, `<div class="stream-error">%s: %s</div>`,
			html.EscapeString(e.ServerName), html.EscapeString(e.Message))
	}
	b.WriteString(`</div>`)
	return b.String()
}

func writeStreamRow(b *strings.Builder, s *models.Stream) {
	color := s.ServerType.Color()

	glyph := playGlyph
	if s.PlaybackState == models.PlaybackPaused {
		glyph = pauseGlyph
	}

	fmt.Fprintf(b, `<div class="stream" style="border-left-color:%s">`, color)
	fmt.Fprintf(b, `<span class="stream-server" style="color:%s">%s</span>`,
		color, html.EscapeString(s.ServerName))
	fmt.Fprintf(b, `<span class="stream-state">%s</span>`, glyph)
	fmt.Fprintf(b, `<span class="stream-title">%s</span>`, html.EscapeString(s.Title))
	fmt.Fprintf(b, `<span class="stream-user">%s</span>`, html.EscapeString(s.User))
	fmt.Fprintf(b, `<span class="stream-device">%s</span>`, html.EscapeString(s.Device))
	fmt.Fprintf(b, `<span class="stream-time">%s / %s</span>`,
		FormatTime(s.ProgressSeconds), FormatTime(s.DurationSeconds))
	if s.IsTranscoding {
		fmt.Fprintf(b, `<span class="stream-transcode" title="%s">TC</span>`,
			html.EscapeString(strings.Join(s.TranscodeDetailLines, "\n")))
	}
	b.WriteString(`</div>`)
}
