package resolver

// Package resolver maps queue tracks to playable sources. It prefers a
// direct audio stream URL from the extracted format list and falls back to
// downloading into a managed temp file when none is usable.
