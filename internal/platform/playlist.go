package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/DeveloperAJ2799/Chronosonic/internal/model"
)

const defaultParseTimeout = 60 * time.Second

const (
	playlistParam   = "list="
	paramSeparator  = "&"
	videoURLPattern = "https://www.youtube.com/watch?v=%s"
)

// PlaylistParser lists the tracks of a platform playlist URL so the whole
// playlist can be queued at once.
type PlaylistParser struct {
	timeout time.Duration
}

// NewPlaylistParser creates a parser with the default timeout.
func NewPlaylistParser() *PlaylistParser {
	return &PlaylistParser{timeout: defaultParseTimeout}
}

// SetTimeout overrides the parse timeout.
func (p *PlaylistParser) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// Parse fetches the playlist's items and returns them as tracks. Formats
// are left empty; the resolver extracts them when a track is played.
func (p *PlaylistParser) Parse(ctx context.Context, url string) ([]model.Track, error) {
	id := ExtractPlaylistID(url)
	if id == "" {
		return nil, fmt.Errorf("not a playlist URL: %s", url)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, id, 0)
	if err != nil {
		return nil, fmt.Errorf("listing playlist: %w", err)
	}

	tracks := make([]model.Track, 0, len(items))
	for _, it := range items {
		tracks = append(tracks, model.Track{
			ID:         it.VideoID,
			Title:      it.Title,
			WebpageURL: fmt.Sprintf(videoURLPattern, it.VideoID),
		})
	}
	return tracks, nil
}

// IsPlaylistURL reports whether the string looks like a playlist URL.
func IsPlaylistURL(url string) bool {
	return strings.Contains(url, playlistParam)
}

// ExtractPlaylistID pulls the playlist ID out of a watch or playlist URL.
func ExtractPlaylistID(url string) string {
	if !strings.Contains(url, playlistParam) {
		return ""
	}
	part := strings.SplitN(url, playlistParam, 2)[1]
	if i := strings.Index(part, paramSeparator); i >= 0 {
		part = part[:i]
	}
	return part
}
