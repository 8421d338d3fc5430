package search

// Package search drives platform queries for the results pane. A session
// owns the active query, its pagination offset, and the generation counter
// that keeps superseded fetches from landing.
