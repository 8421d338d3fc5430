package search

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/DeveloperAJ2799/Chronosonic/internal/extractor"
	"github.com/DeveloperAJ2799/Chronosonic/internal/model"
)

// DefaultBatchSize is how many results each page requests.
const DefaultBatchSize = 10

const fetchTimeout = 60 * time.Second

// Result is delivered to the session callback on the owning thread.
type Result struct {
	Query  string
	Tracks []model.Track
	More   bool // true when this is a load-more page to append
	Err    error
}

// Session runs platform searches with offset pagination. Fetches happen on
// worker goroutines; completions are handed to the dispatcher so all state
// mutation stays on the owning thread. Each fetch is tagged with the
// generation current at launch, and completions from superseded
// generations are dropped.
type Session struct {
	client   extractor.Client
	dispatch func(func())
	onResult func(Result)
	logger   *log.Logger
	batch    int

	gen       int
	query     string
	offset    int
	loading   bool
	exhausted bool
}

// NewSession creates a search session. The dispatcher must run the given
// function on the thread that owns the session.
func NewSession(client extractor.Client, dispatch func(func()), onResult func(Result), logger *log.Logger) *Session {
	return &Session{
		client:   client,
		dispatch: dispatch,
		onResult: onResult,
		logger:   logger,
		batch:    DefaultBatchSize,
	}
}

// Loading reports whether a fetch is in flight.
func (s *Session) Loading() bool {
	return s.loading
}

// Query returns the active query string.
func (s *Session) Query() string {
	return s.query
}

// StartQuery begins a fresh search, superseding any fetch in flight.
func (s *Session) StartQuery(query string) {
	if query == "" {
		return
	}
	s.gen++
	s.query = query
	s.offset = 0
	s.exhausted = false
	s.fetch(false)
}

// LoadMore requests the next page of the active query. No-op while a fetch
// is in flight, before any query has run, or after a short page signaled
// the end of results.
func (s *Session) LoadMore() {
	if s.loading || s.query == "" || s.exhausted {
		return
	}
	s.fetch(true)
}

// fetch asks the platform for offset+batch results and keeps the tail past
// the offset. The platform has no native offset parameter, so pagination
// re-requests the full prefix each time.
func (s *Session) fetch(more bool) {
	gen := s.gen
	query := s.query
	offset := s.offset
	total := offset + s.batch
	s.loading = true

	s.logger.Debug("Search fetch", "query", query, "offset", offset, "total", total)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		entries, err := s.client.Search(ctx, query, total)

		s.dispatch(func() {
			if gen != s.gen {
				s.logger.Debug("Dropping stale search result", "query", query)
				return
			}
			s.loading = false

			if err != nil {
				s.onResult(Result{Query: query, More: more, Err: err})
				return
			}

			page := entries
			if offset < len(page) {
				page = page[offset:]
			} else {
				page = nil
			}

			tracks := make([]model.Track, 0, len(page))
			for _, e := range page {
				tracks = append(tracks, e.Track())
			}
			s.offset += len(tracks)
			if len(tracks) < s.batch {
				s.exhausted = true
			}

			s.onResult(Result{Query: query, Tracks: tracks, More: more})
		})
	}()
}
