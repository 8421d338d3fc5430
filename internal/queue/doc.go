package queue

// Package queue holds the playback queue: an ordered track list plus a
// cursor. Navigation is cursor arithmetic only; playback and resolution
// happen elsewhere.
