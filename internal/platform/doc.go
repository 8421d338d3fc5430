package platform

// Package platform contains OS/platform integration and external tooling glue:
// per-user directory helpers and playlist listing via the ytdlp library.
