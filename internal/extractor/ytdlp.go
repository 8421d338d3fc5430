package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/DeveloperAJ2799/Chronosonic/internal/model"
)

var (
	// ErrUnavailable means the yt-dlp binary could not be found on PATH.
	ErrUnavailable = errors.New("yt-dlp not available")

	// ErrExtractFailed wraps any failed extraction invocation.
	ErrExtractFailed = errors.New("extraction failed")
)

// Entry is a single search result from the extraction service.
type Entry struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Uploader   string         `json:"uploader"`
	Channel    string         `json:"channel"`
	WebpageURL string         `json:"webpage_url"`
	URL        string         `json:"url"`
	Duration   float64        `json:"duration"` // seconds
	Thumbnail  string         `json:"thumbnail"`
	Formats    []model.Format `json:"formats"`
}

// Track converts the entry into a domain track. The uploader falls back to
// the channel name and the webpage URL falls back to the plain URL, since
// the extraction service fills either depending on the source.
func (e Entry) Track() model.Track {
	uploader := e.Uploader
	if uploader == "" {
		uploader = e.Channel
	}
	link := e.WebpageURL
	if link == "" {
		link = e.URL
	}
	return model.Track{
		ID:         e.ID,
		Title:      e.Title,
		Uploader:   uploader,
		WebpageURL: link,
		DurationMS: int64(e.Duration * 1000),
		Thumbnail:  e.Thumbnail,
		Formats:    e.Formats,
	}
}

// Info is the full metadata for a single track.
type Info struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Uploader   string         `json:"uploader"`
	WebpageURL string         `json:"webpage_url"`
	Duration   float64        `json:"duration"` // seconds
	Thumbnail  string         `json:"thumbnail"`
	Formats    []model.Format `json:"formats"`

	// Raw keeps the complete decoded metadata document.
	Raw map[string]any `json:"-"`
}

// DurationMS returns the track duration in milliseconds.
func (i *Info) DurationMS() int64 {
	return int64(i.Duration * 1000)
}

// YTDLP is the production Client backed by the yt-dlp executable.
type YTDLP struct {
	Binary string
}

// NewYTDLP creates a client using the default binary name.
func NewYTDLP() *YTDLP {
	return &YTDLP{Binary: "yt-dlp"}
}

// Available checks that the binary can be found on PATH. Called once at
// startup; when it fails, search and playback actions are disabled.
func (y *YTDLP) Available() error {
	if _, err := exec.LookPath(y.Binary); err != nil {
		return fmt.Errorf("%w: install it with your package manager or pip install yt-dlp", ErrUnavailable)
	}
	return nil
}

type searchRoot struct {
	Entries []Entry `json:"entries"`
}

// Search runs a ytsearchN query and returns all entries up to totalWanted.
// Callers paginate by requesting a growing total and slicing the tail.
func (y *YTDLP) Search(ctx context.Context, query string, totalWanted int) ([]Entry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrExtractFailed)
	}
	if totalWanted <= 0 {
		totalWanted = 1
	}

	target := fmt.Sprintf("ytsearch%d:%s", totalWanted, query)
	output, err := y.run(ctx,
		"--no-warnings",
		"--dump-single-json",
		"--skip-download",
		target,
	)
	if err != nil {
		return nil, err
	}

	var root searchRoot
	if err := json.Unmarshal(output, &root); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", ErrExtractFailed, err)
	}
	return root.Entries, nil
}

// ExtractFormats fetches metadata and the format list for a watch-page URL.
func (y *YTDLP) ExtractFormats(ctx context.Context, url string) (*Info, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: empty url", ErrExtractFailed)
	}

	output, err := y.run(ctx,
		"--no-warnings",
		"--dump-single-json",
		"--skip-download",
		"--no-playlist",
		url,
	)
	if err != nil {
		return nil, err
	}
	return parseInfo(output)
}

// downloadArgs builds the bestaudio download invocation. The source sites
// mostly serve webm/m4a/opus audio, which the playback engine cannot decode,
// so the download is converted to mp3 on the way in. The conversion runs
// through ffmpeg, which playback already requires for remote streams.
func downloadArgs(url, destTemplate string) []string {
	return []string{
		"--no-warnings",
		"-f", "bestaudio",
		"-x",
		"--audio-format", "mp3",
		"--no-playlist",
		"--no-simulate",
		"--dump-single-json",
		"-o", destTemplate,
		url,
	}
}

// Download fetches bestaudio into destTemplate, converted to mp3, and
// returns the resulting file path. Metadata is printed by the same
// invocation, so no second network round trip is needed.
func (y *YTDLP) Download(ctx context.Context, url, destTemplate string) (string, *Info, error) {
	if strings.TrimSpace(url) == "" {
		return "", nil, fmt.Errorf("%w: empty url", ErrExtractFailed)
	}

	output, err := y.run(ctx, downloadArgs(url, destTemplate)...)
	if err != nil {
		return "", nil, err
	}

	info, err := parseInfo(output)
	if err != nil {
		return "", nil, err
	}

	path, err := resolveDownloadedPath(destTemplate)
	if err != nil {
		return "", nil, err
	}
	return path, info, nil
}

func (y *YTDLP) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, y.Binary, args...)
	output, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderrOf(err))
		if detail != "" {
			return nil, fmt.Errorf("%w: %v: %s", ErrExtractFailed, err, detail)
		}
		return nil, fmt.Errorf("%w: %v", ErrExtractFailed, err)
	}
	return output, nil
}

func stderrOf(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(exitErr.Stderr)
	}
	return ""
}

func parseInfo(data []byte) (*Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", ErrExtractFailed, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err == nil {
		info.Raw = raw
	}
	return &info, nil
}

// resolveDownloadedPath finds the file written for a template containing a
// %(ext)s placeholder, since the final extension is picked by the extractor.
// The converted .mp3 wins over any pre-conversion file left next to it.
func resolveDownloadedPath(destTemplate string) (string, error) {
	pattern := strings.ReplaceAll(destTemplate, "%(ext)s", "*")
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("%w: downloaded file not found for %s", ErrExtractFailed, destTemplate)
	}
	for _, m := range matches {
		if strings.EqualFold(filepath.Ext(m), ".mp3") {
			return m, nil
		}
	}
	return matches[0], nil
}
