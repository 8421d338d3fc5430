package resolver

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/DeveloperAJ2799/Chronosonic/internal/extractor"
	"github.com/DeveloperAJ2799/Chronosonic/internal/model"
)

type fakeClient struct {
	extractCalls  int
	downloadCalls int
	info          *extractor.Info
	extractErr    error
	downloadErr   error
}

func (f *fakeClient) Search(ctx context.Context, query string, totalWanted int) ([]extractor.Entry, error) {
	return nil, extractor.ErrExtractFailed
}

func (f *fakeClient) ExtractFormats(ctx context.Context, url string) (*extractor.Info, error) {
	f.extractCalls++
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.info, nil
}

func (f *fakeClient) Download(ctx context.Context, url, destTemplate string) (string, *extractor.Info, error) {
	f.downloadCalls++
	if f.downloadErr != nil {
		return "", nil, f.downloadErr
	}
	path := strings.ReplaceAll(destTemplate, "%(ext)s", "webm")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return "", nil, err
	}
	return path, f.info, nil
}

type harness struct {
	resolver *Resolver
	pending  chan func()
	results  []Resolution
}

func newHarness(t *testing.T, client extractor.Client) *harness {
	t.Helper()
	h := &harness{pending: make(chan func(), 4)}
	h.resolver = New(client, func(f func()) { h.pending <- f }, log.New(io.Discard), t.TempDir())
	return h
}

func (h *harness) resolve(track model.Track) Resolution {
	h.resolver.Resolve(track, func(r Resolution) { h.results = append(h.results, r) })
	(<-h.pending)()
	return h.results[len(h.results)-1]
}

func TestSelectFormatPrefersAudioOnly(t *testing.T) {
	formats := []model.Format{
		{ID: "22", ACodec: "mp4a", VCodec: "avc1", TBR: 2000, URL: "https://cdn/muxed"},
		{ID: "251", ACodec: "opus", VCodec: "none", ABR: 136, URL: "https://cdn/opus"},
		{ID: "140", ACodec: "mp4a", VCodec: "none", ABR: 129, URL: "https://cdn/aac"},
	}

	f, ok := SelectFormat(formats)
	if !ok || f.ID != "251" {
		t.Errorf("Expected the highest-bitrate audio-only format, got %+v", f)
	}
}

func TestSelectFormatRelaxesToMuxed(t *testing.T) {
	formats := []model.Format{
		{ID: "137", ACodec: "none", VCodec: "avc1", TBR: 4000, URL: "https://cdn/video"},
		{ID: "18", ACodec: "mp4a", VCodec: "avc1", TBR: 500, URL: "https://cdn/muxed"},
	}

	f, ok := SelectFormat(formats)
	if !ok || f.ID != "18" {
		t.Errorf("Expected the muxed format with audio, got %+v", f)
	}
}

func TestSelectFormatSkipsMissingURL(t *testing.T) {
	formats := []model.Format{
		{ID: "251", ACodec: "opus", VCodec: "none", ABR: 136},
		{ID: "140", ACodec: "mp4a", VCodec: "none", ABR: 129, URL: "https://cdn/aac"},
	}

	f, ok := SelectFormat(formats)
	if !ok || f.ID != "140" {
		t.Errorf("Expected the format with a url, got %+v", f)
	}

	if _, ok := SelectFormat(nil); ok {
		t.Error("Empty format list should not select anything")
	}
}

func TestResolveUsesCachedFormats(t *testing.T) {
	client := &fakeClient{}
	h := newHarness(t, client)

	track := model.Track{
		ID:    "vid1",
		Title: "First Song",
		Formats: []model.Format{
			{ID: "251", ACodec: "opus", VCodec: "none", ABR: 136, URL: "https://cdn/opus"},
		},
	}

	res := h.resolve(track)
	if res.Err != nil {
		t.Fatalf("Resolve failed: %v", res.Err)
	}
	if res.Source != "https://cdn/opus" || res.IsLocal {
		t.Errorf("Expected a direct url resolution, got %+v", res)
	}
	if client.extractCalls != 0 {
		t.Error("Cached formats should skip the metadata round trip")
	}
}

func TestResolveExtractsWhenFormatsMissing(t *testing.T) {
	client := &fakeClient{info: &extractor.Info{
		Title:    "First Song",
		Duration: 215,
		Formats: []model.Format{
			{ID: "251", ACodec: "opus", VCodec: "none", ABR: 136, URL: "https://cdn/opus"},
		},
	}}
	h := newHarness(t, client)

	res := h.resolve(model.Track{ID: "vid1", WebpageURL: "https://example.com/watch"})
	if res.Err != nil {
		t.Fatalf("Resolve failed: %v", res.Err)
	}
	if client.extractCalls != 1 {
		t.Errorf("Expected one extraction call, got %d", client.extractCalls)
	}
	if res.Track.Title != "First Song" || res.Track.DurationMS != 215000 {
		t.Errorf("Metadata should be merged into the track, got %+v", res.Track)
	}
}

func TestResolveFallsBackToDownload(t *testing.T) {
	client := &fakeClient{info: &extractor.Info{Title: "First Song"}}
	h := newHarness(t, client)

	track := model.Track{
		ID:         "vid1",
		WebpageURL: "https://example.com/watch",
		Formats: []model.Format{
			{ID: "251", ACodec: "opus", VCodec: "none", ABR: 136}, // no url
		},
	}

	res := h.resolve(track)
	if res.Err != nil {
		t.Fatalf("Resolve failed: %v", res.Err)
	}
	if !res.IsLocal {
		t.Fatalf("Expected a local resolution, got %+v", res)
	}
	if client.downloadCalls != 1 {
		t.Errorf("Expected one download call, got %d", client.downloadCalls)
	}
	if _, err := os.Stat(res.Source); err != nil {
		t.Errorf("Downloaded file should exist: %v", err)
	}
}

func TestTempFilesReplacedAndCleaned(t *testing.T) {
	client := &fakeClient{info: &extractor.Info{}}
	h := newHarness(t, client)

	track := model.Track{ID: "vid1", WebpageURL: "https://example.com/watch"}

	first := h.resolve(track)
	second := h.resolve(track)

	if _, err := os.Stat(first.Source); !os.IsNotExist(err) {
		t.Error("Previous temp file should be removed when a new one lands")
	}
	if _, err := os.Stat(second.Source); err != nil {
		t.Errorf("Current temp file should still exist: %v", err)
	}

	h.resolver.CleanupAll()
	if _, err := os.Stat(second.Source); !os.IsNotExist(err) {
		t.Error("CleanupAll should remove the remaining temp file")
	}

	leftover, _ := filepath.Glob(filepath.Join(filepath.Dir(second.Source), "chronosonic_*"))
	if len(leftover) != 0 {
		t.Errorf("No temp files should remain, found %v", leftover)
	}
}

func TestResolveErrorsPropagate(t *testing.T) {
	client := &fakeClient{extractErr: extractor.ErrExtractFailed}
	h := newHarness(t, client)

	res := h.resolve(model.Track{ID: "vid1", WebpageURL: "https://example.com/watch"})
	if res.Err == nil {
		t.Error("Extraction failure should surface in the resolution")
	}
}
