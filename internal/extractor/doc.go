package extractor

// Package extractor wraps the yt-dlp executable behind a narrow contract:
// search, format extraction, and audio download. All invocations are
// context-bound subprocess calls returning parsed JSON; availability of the
// binary is checked once at startup.
