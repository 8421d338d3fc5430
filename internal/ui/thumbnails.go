package ui

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"github.com/charmbracelet/log"
)

// ThumbnailFetcher downloads track artwork with a short timeout and caches
// it on disk under hash-derived names. Fetches run on worker goroutines;
// the callback is delivered through the dispatcher.
type ThumbnailFetcher struct {
	cacheDir string
	client   *http.Client
	dispatch func(func())
	logger   *log.Logger
}

// NewThumbnailFetcher creates a fetcher caching under cacheDir.
func NewThumbnailFetcher(cacheDir string, dispatch func(func()), logger *log.Logger) *ThumbnailFetcher {
	return &ThumbnailFetcher{
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: ThumbnailTimeout},
		dispatch: dispatch,
		logger:   logger,
	}
}

// Fetch loads a thumbnail URL, from cache when possible, and hands the
// resource to done on the owning thread. A failed fetch passes nil.
func (t *ThumbnailFetcher) Fetch(url string, done func(fyne.Resource)) {
	if url == "" {
		done(nil)
		return
	}

	go func() {
		res := t.fetch(url)
		t.dispatch(func() { done(res) })
	}()
}

func (t *ThumbnailFetcher) fetch(url string) fyne.Resource {
	path := t.cachePath(url)
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return fyne.NewStaticResource(filepath.Base(path), data)
		}
	}

	resp, err := t.client.Get(url)
	if err != nil {
		t.logger.Debug("Thumbnail fetch failed", "url", url, "error", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.logger.Debug("Thumbnail fetch failed", "url", url, "status", resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil
	}

	name := fmt.Sprintf("thumb_%x", sha1.Sum([]byte(url)))
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.logger.Debug("Thumbnail cache write failed", "path", path, "error", err)
		}
	}
	return fyne.NewStaticResource(name, data)
}

// cachePath returns "" when no cache directory is available.
func (t *ThumbnailFetcher) cachePath(url string) string {
	if t.cacheDir == "" {
		return ""
	}
	sum := sha1.Sum([]byte(url))
	return filepath.Join(t.cacheDir, fmt.Sprintf("thumb_%s", hex.EncodeToString(sum[:])))
}
