package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconPlay     = "▶"
	IconPause    = "⏸"
	IconPrevious = "⏮"
	IconNext     = "⏭"
	IconShuffle  = "🔀"
	IconSettings = "⚙"
	IconClear    = "✕"
)

// Text fragments
const (
	DashPlaceholder = "—"
	TimeSeparator   = " / "
)

// Layout sizing
const (
	ThumbnailWidth  float32 = 120
	ThumbnailHeight float32 = 68

	ListMinWidth  float32 = 320
	ListMinHeight float32 = 240

	WindowDefaultWidth  float32 = 1100
	WindowDefaultHeight float32 = 720
)

// Status message display durations
const (
	StatusShort = 3 * time.Second
	StatusLong  = 6 * time.Second
)

// Thumbnail fetching
const (
	ThumbnailTimeout = 8 * time.Second
)

// Playback speed presets
var SpeedOptions = []string{"0.5x", "0.75x", "1x", "1.25x", "1.5x", "2x"}
