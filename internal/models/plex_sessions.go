// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

package models

// Plex Active Sessions Models
// These structures represent active playback sessions from /status/sessions
// Endpoint: GET /status/sessions?X-Plex-Token={token}
// Documentation: https://plexapi.dev and https://www.plexopedia.com/plex-media-server/api/
//
// Fields the normalizer treats as optional are pointers or omitempty so a
// missing field is distinguishable from a zero value where it matters
// (episode numbering uses 0 for "Specials" seasons).

// PlexSessionsResponse represents the top-level response from /status/sessions
type PlexSessionsResponse struct {
	MediaContainer PlexSessionsContainer `json:"MediaContainer"`
}

// PlexSessionsContainer wraps the active sessions array.
// Metadata is absent entirely when no sessions are active.
type PlexSessionsContainer struct {
	Size     int           `json:"size"`               // Number of active sessions
	Metadata []PlexSession `json:"Metadata,omitempty"` // Array of active session metadata
}

// PlexSession represents a single active playback session
type PlexSession struct {
	// Session identification
	SessionKey string `json:"sessionKey"` // Unique session identifier
	Key        string `json:"key"`        // Metadata key path

	// Content information
	Type             string `json:"type"`                       // "movie", "episode", "track"
	Title            string `json:"title"`                      // Content title
	GrandparentTitle string `json:"grandparentTitle,omitempty"` // Show/Artist name
	ParentTitle      string `json:"parentTitle,omitempty"`      // Season/Album name
	Index            *int   `json:"index,omitempty"`            // Episode number (0 is valid)
	ParentIndex      *int   `json:"parentIndex,omitempty"`      // Season number (0 = Specials)

	// User and player
	User   *PlexSessionUser   `json:"User,omitempty"`   // User watching this session
	Player *PlexSessionPlayer `json:"Player,omitempty"` // Device/client information

	// Playback state
	ViewOffset int64 `json:"viewOffset"` // Current playback position (milliseconds)
	Duration   int64 `json:"duration"`   // Total duration (milliseconds)

	// Transcode session details (nil if direct play)
	TranscodeSession *PlexTranscodeSession `json:"TranscodeSession,omitempty"`

	// Media information (source quality)
	Media []PlexMedia `json:"Media,omitempty"`
}

// PlexSessionUser represents user information in active sessions
type PlexSessionUser struct {
	ID    int    `json:"id"`
	Title string `json:"title"` // Username
	Thumb string `json:"thumb"` // Avatar URL
}

// PlexSessionPlayer represents device/client information
type PlexSessionPlayer struct {
	Address  string `json:"address"`  // Client IP address
	Device   string `json:"device"`   // Device name (e.g., "Xbox One", "Chrome")
	Platform string `json:"platform"` // Platform (e.g., "Windows", "iOS", "tvOS")
	Product  string `json:"product"`  // Client app (e.g., "Plex Web", "Plex for iOS")
	State    string `json:"state"`    // Player state ("playing", "paused", "buffering")
	Title    string `json:"title"`    // Device friendly name
	Local    bool   `json:"local"`    // Local network connection
	Secure   bool   `json:"secure"`   // HTTPS connection
}

// PlexTranscodeSession represents active transcode session details
type PlexTranscodeSession struct {
	Key              string  `json:"key"`              // Transcode session key
	Throttled        bool    `json:"throttled"`        // Transcode throttled due to system load
	Complete         bool    `json:"complete"`         // Transcode completed
	Progress         float64 `json:"progress"`         // Transcode progress (0-100 percentage)
	Speed            float64 `json:"speed"`            // Transcode speed (e.g., 1.5 = 1.5x realtime)
	Context          string  `json:"context"`          // Transcode context (e.g., "streaming")
	SourceVideoCodec string  `json:"sourceVideoCodec"` // Original video codec (e.g., "hevc", "h264")
	SourceAudioCodec string  `json:"sourceAudioCodec"` // Original audio codec
	VideoDecision    string  `json:"videoDecision"`    // "transcode", "copy", "direct play"
	AudioDecision    string  `json:"audioDecision"`    // "transcode", "copy", "direct play"
	Protocol         string  `json:"protocol"`         // Streaming protocol (e.g., "hls", "dash")
	Container        string  `json:"container"`        // Output container format
	VideoCodec       string  `json:"videoCodec"`       // Target video codec
	AudioCodec       string  `json:"audioCodec"`       // Target audio codec
	AudioChannels    int     `json:"audioChannels"`    // Target audio channels
	Width            int     `json:"width"`            // Target video width (pixels)
	Height           int     `json:"height"`           // Target video height (pixels)
	HwRequested      bool    `json:"transcodeHwRequested"`
	HwDecoding       string  `json:"transcodeHwDecoding"` // e.g. "qsv", "nvenc", "vaapi", "videotoolbox"
	HwEncoding       string  `json:"transcodeHwEncoding"`
}

// PlexMedia represents source media information (quality, codecs)
type PlexMedia struct {
	ID              int    `json:"id"`
	Duration        int64  `json:"duration"`
	Bitrate         int    `json:"bitrate"` // Kbps
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	AudioChannels   int    `json:"audioChannels"`
	AudioCodec      string `json:"audioCodec"`
	VideoCodec      string `json:"videoCodec"`
	VideoResolution string `json:"videoResolution"` // "4k", "1080", "720", "sd"
	Container       string `json:"container"`
}
