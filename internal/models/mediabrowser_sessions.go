// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

package models

// MediaBrowser Session Models
// Emby and Jellyfin share the MediaBrowser API lineage, so a single schema
// covers both. The response is a top-level array of sessions; a session
// without NowPlayingItem is idle and is skipped by the normalizer.
//
// Emby endpoint:     GET /emby/Sessions?api_key={key}
// Jellyfin endpoint: GET /Sessions (X-Emby-Token header)
// Documentation: https://dev.emby.media/doc/restapi/index.html

// MediaBrowserSession represents one session from the /Sessions endpoint
type MediaBrowserSession struct {
	// Session identification
	ID         string `json:"Id"`         // Unique session identifier
	Client     string `json:"Client"`     // Client application name
	DeviceID   string `json:"DeviceId"`   // Unique device identifier
	DeviceName string `json:"DeviceName"` // Device friendly name

	// User information
	UserID   string `json:"UserId"`   // User ID
	UserName string `json:"UserName"` // Username

	// Connection details
	RemoteEndPoint string `json:"RemoteEndPoint,omitempty"` // Client IP address

	// Playback state (all nil/absent for idle sessions)
	NowPlayingItem  *MediaBrowserNowPlayingItem  `json:"NowPlayingItem,omitempty"`
	PlayState       *MediaBrowserPlayState       `json:"PlayState,omitempty"`
	TranscodingInfo *MediaBrowserTranscodingInfo `json:"TranscodingInfo,omitempty"`
}

// MediaBrowserNowPlayingItem represents the currently playing content
type MediaBrowserNowPlayingItem struct {
	ID        string `json:"Id"`        // Item ID
	Name      string `json:"Name"`      // Content title
	Type      string `json:"Type"`      // "Movie", "Episode", "Audio"
	MediaType string `json:"MediaType"` // "Video", "Audio"

	// TV Show specific
	SeriesName        string `json:"SeriesName,omitempty"`        // Series name
	IndexNumber       *int   `json:"IndexNumber,omitempty"`       // Episode number
	ParentIndexNumber *int   `json:"ParentIndexNumber,omitempty"` // Season number

	// Media information
	RunTimeTicks int64  `json:"RunTimeTicks"`        // Duration in ticks (100ns units)
	Container    string `json:"Container,omitempty"` // Container format

	// Media streams (video/audio/subtitle)
	MediaStreams []MediaBrowserStream `json:"MediaStreams,omitempty"`
}

// MediaBrowserPlayState represents playback state details
type MediaBrowserPlayState struct {
	PositionTicks int64  `json:"PositionTicks"`        // Current position in ticks
	CanSeek       bool   `json:"CanSeek"`              // Can seek
	IsPaused      bool   `json:"IsPaused"`             // Is paused
	IsMuted       bool   `json:"IsMuted"`              // Is muted
	PlayMethod    string `json:"PlayMethod,omitempty"` // "DirectPlay", "DirectStream", "Transcode"
}

// MediaBrowserTranscodingInfo represents transcode session details
type MediaBrowserTranscodingInfo struct {
	AudioCodec       string   `json:"AudioCodec,omitempty"`
	VideoCodec       string   `json:"VideoCodec,omitempty"`
	Container        string   `json:"Container,omitempty"`
	IsVideoDirect    bool     `json:"IsVideoDirect"`
	IsAudioDirect    bool     `json:"IsAudioDirect"`
	Bitrate          int      `json:"Bitrate,omitempty"`
	Width            int      `json:"Width,omitempty"`
	Height           int      `json:"Height,omitempty"`
	AudioChannels    int      `json:"AudioChannels,omitempty"`
	TranscodeReasons []string `json:"TranscodeReasons,omitempty"`
}

// MediaBrowserStream represents a media stream (video/audio/subtitle)
type MediaBrowserStream struct {
	Codec        string `json:"Codec"`
	DisplayTitle string `json:"DisplayTitle,omitempty"`
	Type         string `json:"Type"` // "Video", "Audio", "Subtitle"
	Index        int    `json:"Index"`
	Height       int    `json:"Height,omitempty"`
	Width        int    `json:"Width,omitempty"`
	BitRate      int    `json:"BitRate,omitempty"`
	Channels     int    `json:"Channels,omitempty"`
}
