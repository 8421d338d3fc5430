package model

import (
	"fmt"
	"strings"
)

// Format describes a single playable rendition of a track as reported by
// the extraction service. Only the fields the player consumes are kept.
type Format struct {
	ID     string  `json:"format_id"`
	Ext    string  `json:"ext"`
	ACodec string  `json:"acodec"`
	VCodec string  `json:"vcodec"`
	ABR    float64 `json:"abr"`
	TBR    float64 `json:"tbr"`
	URL    string  `json:"url"`
}

// HasAudio returns true if the format carries an audio stream.
func (f Format) HasAudio() bool {
	return f.ACodec != "" && f.ACodec != "none"
}

// IsAudioOnly returns true if the format carries audio and no video stream.
func (f Format) IsAudioOnly() bool {
	return f.HasAudio() && (f.VCodec == "" || f.VCodec == "none")
}

// Bitrate returns the average bitrate, falling back to the total bitrate,
// falling back to zero. Used to rank candidate formats.
func (f Format) Bitrate() float64 {
	if f.ABR > 0 {
		return f.ABR
	}
	if f.TBR > 0 {
		return f.TBR
	}
	return 0
}

// Track represents a single streamable audio item. A Track is immutable once
// constructed; mutations replace the value wholesale.
type Track struct {
	ID         string
	Title      string
	Uploader   string
	WebpageURL string
	DurationMS int64 // 0 = unknown
	Thumbnail  string

	// Formats caches the rendition list from the search response so the
	// resolver can skip a metadata round trip. May be nil.
	Formats []Format

	// RawEntry keeps the raw metadata blob from the extraction service.
	RawEntry map[string]any
}

// TrackSnapshot is the persisted form of a Track. Formats and raw metadata
// are dropped; playlists only need identity and display fields.
type TrackSnapshot struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Uploader   string `json:"uploader"`
	WebpageURL string `json:"webpage_url"`
	DurationMS int64  `json:"duration"`
	Thumbnail  string `json:"thumbnail,omitempty"`
}

// Snapshot returns the persistable form of the track.
func (t Track) Snapshot() TrackSnapshot {
	return TrackSnapshot{
		ID:         t.ID,
		Title:      t.Title,
		Uploader:   t.Uploader,
		WebpageURL: t.WebpageURL,
		DurationMS: t.DurationMS,
		Thumbnail:  t.Thumbnail,
	}
}

// FromSnapshot rebuilds a Track from its persisted form.
func FromSnapshot(s TrackSnapshot) Track {
	return Track{
		ID:         s.ID,
		Title:      s.Title,
		Uploader:   s.Uploader,
		WebpageURL: s.WebpageURL,
		DurationMS: s.DurationMS,
		Thumbnail:  s.Thumbnail,
	}
}

// DisplayTitle returns "title — uploader", or whichever part is present.
func (t Track) DisplayTitle() string {
	title := strings.TrimSpace(t.Title)
	uploader := strings.TrimSpace(t.Uploader)
	switch {
	case title != "" && uploader != "":
		return title + " — " + uploader
	case title != "":
		return title
	default:
		return t.WebpageURL
	}
}

// FormatDurationMS renders a millisecond offset as mm:ss, or hh:mm:ss for
// tracks an hour or longer. Non-positive values render as 00:00.
func FormatDurationMS(ms int64) string {
	if ms <= 0 {
		return "00:00"
	}
	s := ms / 1000
	m := s / 60
	s %= 60
	h := m / 60
	m %= 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
