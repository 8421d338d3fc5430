package model

// Package model defines domain data structures used across the app: tracks
// and their persisted snapshots, playback formats, and the repeat-mode and
// player-state enums. Structures are designed for direct binding in the UI
// and explicit state transitions.
