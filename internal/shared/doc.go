package shared

// Package shared carries small cross-cutting helpers: logger construction
// and ID generation.
