package ui

// Package ui contains the Fyne-based desktop user interface: search and
// results, the playback queue, transport controls with A/B looping, and
// playlist management. It wires user interactions to the core services and
// owns nothing but presentation state.
