package store

// Package store persists the application's JSON documents: configuration,
// named playlists, and the search history. Reads never fail the caller; a
// missing or corrupt document yields its default value.
