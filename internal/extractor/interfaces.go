package extractor

import "context"

// Client defines the interface for the extraction service.
type Client interface {
	// Search returns up to totalWanted entries for a free-text query.
	Search(ctx context.Context, query string, totalWanted int) ([]Entry, error)

	// ExtractFormats fetches fresh metadata, including the format list,
	// for a single watch-page URL.
	ExtractFormats(ctx context.Context, url string) (*Info, error)

	// Download fetches the best audio rendition into destTemplate (which
	// must contain a %(ext)s placeholder) and returns the final file path
	// plus the metadata from the same invocation.
	Download(ctx context.Context, url, destTemplate string) (string, *Info, error)
}
