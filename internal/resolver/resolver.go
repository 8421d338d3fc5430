package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/DeveloperAJ2799/Chronosonic/internal/extractor"
	"github.com/DeveloperAJ2799/Chronosonic/internal/model"
	"github.com/DeveloperAJ2799/Chronosonic/internal/shared"
)

const resolveTimeout = 5 * time.Minute

// Resolution is the outcome of resolving a track to something playable.
type Resolution struct {
	Track   model.Track
	Source  string // direct stream URL or a local file path
	IsLocal bool
	Err     error
}

// Resolver turns a queue track into a playable source. Resolution runs on
// a worker goroutine and delivers exactly one Resolution through the
// dispatcher. Preference order: a direct URL from the best audio format,
// falling back to a temporary download when no format carries one.
type Resolver struct {
	client   extractor.Client
	dispatch func(func())
	logger   *log.Logger
	tempDir  string

	// temp files created so far, oldest first; mutated only on the
	// owning thread via dispatched completions.
	tempFiles []string
}

// New creates a resolver that stores temporary downloads under tempDir.
func New(client extractor.Client, dispatch func(func()), logger *log.Logger, tempDir string) *Resolver {
	return &Resolver{
		client:   client,
		dispatch: dispatch,
		logger:   logger,
		tempDir:  tempDir,
	}
}

// Resolve starts resolving a track. done is invoked once on the owning
// thread. Callers guard against stale completions themselves, typically by
// capturing a generation counter in done.
func (r *Resolver) Resolve(track model.Track, done func(Resolution)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		defer cancel()

		res := r.resolve(ctx, track)

		r.dispatch(func() {
			if res.IsLocal && res.Err == nil {
				r.rememberTemp(res.Source)
			}
			done(res)
		})
	}()
}

func (r *Resolver) resolve(ctx context.Context, track model.Track) Resolution {
	formats := track.Formats
	if len(formats) == 0 {
		info, err := r.client.ExtractFormats(ctx, track.WebpageURL)
		if err != nil {
			return Resolution{Track: track, Err: fmt.Errorf("resolve %q: %w", track.Title, err)}
		}
		formats = info.Formats
		track = mergeInfo(track, info)
	}

	if f, ok := SelectFormat(formats); ok && f.URL != "" {
		r.logger.Debug("Resolved to direct url", "track", track.Title, "format", f.ID, "abr", f.Bitrate())
		return Resolution{Track: track, Source: f.URL}
	}

	// No usable direct URL; let the extraction service pick and fetch
	// the best audio rendition into a temp file.
	template := filepath.Join(r.tempDir, "chronosonic_"+shared.GenerateID()+".%(ext)s")
	path, info, err := r.client.Download(ctx, track.WebpageURL, template)
	if err != nil {
		return Resolution{Track: track, Err: fmt.Errorf("download %q: %w", track.Title, err)}
	}

	track = mergeInfo(track, info)
	r.logger.Debug("Resolved to temp download", "track", track.Title, "path", path)
	return Resolution{Track: track, Source: path, IsLocal: true}
}

// SelectFormat picks the best playable format: audio-only formats first,
// relaxing to anything with an audio stream, highest bitrate wins. Formats
// without a URL are skipped.
func SelectFormat(formats []model.Format) (model.Format, bool) {
	pick := func(keep func(model.Format) bool) (model.Format, bool) {
		var candidates []model.Format
		for _, f := range formats {
			if f.URL != "" && keep(f) {
				candidates = append(candidates, f)
			}
		}
		if len(candidates) == 0 {
			return model.Format{}, false
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Bitrate() > candidates[j].Bitrate()
		})
		return candidates[0], true
	}

	if f, ok := pick(model.Format.IsAudioOnly); ok {
		return f, true
	}
	return pick(model.Format.HasAudio)
}

// rememberTemp records a new temp file and removes the previous one, so at
// most one download lingers during playback.
func (r *Resolver) rememberTemp(path string) {
	for _, old := range r.tempFiles {
		if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("Failed to remove temp file", "path", old, "error", err)
		}
	}
	r.tempFiles = []string{path}
}

// CleanupAll removes every remaining temp file. Called on shutdown.
func (r *Resolver) CleanupAll() {
	for _, path := range r.tempFiles {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("Failed to remove temp file", "path", path, "error", err)
		}
	}
	r.tempFiles = nil
}

// mergeInfo fills gaps in a track from freshly extracted metadata.
func mergeInfo(track model.Track, info *extractor.Info) model.Track {
	if info == nil {
		return track
	}
	if track.Title == "" {
		track.Title = info.Title
	}
	if track.Uploader == "" {
		track.Uploader = info.Uploader
	}
	if track.DurationMS == 0 {
		track.DurationMS = info.DurationMS()
	}
	if track.Thumbnail == "" {
		track.Thumbnail = info.Thumbnail
	}
	track.Formats = info.Formats
	track.RawEntry = info.Raw
	return track
}
