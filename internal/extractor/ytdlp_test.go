package extractor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const sampleSearchJSON = `{
	"entries": [
		{
			"id": "vid1",
			"title": "First Song",
			"uploader": "Channel A",
			"webpage_url": "https://www.youtube.com/watch?v=vid1",
			"duration": 215,
			"thumbnail": "https://i.ytimg.com/vi/vid1/default.jpg",
			"formats": [
				{"format_id": "251", "ext": "webm", "acodec": "opus", "vcodec": "none", "abr": 136.1, "url": "https://cdn/a"}
			]
		},
		{
			"id": "vid2",
			"title": "Second Song",
			"channel": "Channel B",
			"url": "https://www.youtube.com/watch?v=vid2",
			"duration": 180.5
		}
	]
}`

func TestSearchRootParsing(t *testing.T) {
	var root searchRoot
	if err := json.Unmarshal([]byte(sampleSearchJSON), &root); err != nil {
		t.Fatalf("Failed to parse search json: %v", err)
	}

	if len(root.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(root.Entries))
	}

	first := root.Entries[0]
	if first.ID != "vid1" || first.Uploader != "Channel A" {
		t.Errorf("Unexpected first entry: %+v", first)
	}
	if len(first.Formats) != 1 || first.Formats[0].ACodec != "opus" {
		t.Errorf("Formats not parsed: %+v", first.Formats)
	}
}

func TestEntryTrackFallbacks(t *testing.T) {
	var root searchRoot
	if err := json.Unmarshal([]byte(sampleSearchJSON), &root); err != nil {
		t.Fatalf("Failed to parse search json: %v", err)
	}

	track := root.Entries[1].Track()
	if track.Uploader != "Channel B" {
		t.Errorf("Uploader should fall back to channel, got %q", track.Uploader)
	}
	if track.WebpageURL != "https://www.youtube.com/watch?v=vid2" {
		t.Errorf("Webpage URL should fall back to url, got %q", track.WebpageURL)
	}
	if track.DurationMS != 180500 {
		t.Errorf("Expected 180500 ms, got %d", track.DurationMS)
	}
}

func TestParseInfoKeepsRaw(t *testing.T) {
	data := []byte(`{
		"id": "vid1",
		"title": "First Song",
		"uploader": "Channel A",
		"webpage_url": "https://www.youtube.com/watch?v=vid1",
		"duration": 215,
		"view_count": 12345,
		"formats": [{"format_id": "140", "acodec": "mp4a.40.2", "vcodec": "none", "abr": 129.5, "url": "https://cdn/b"}]
	}`)

	info, err := parseInfo(data)
	if err != nil {
		t.Fatalf("parseInfo failed: %v", err)
	}

	if info.Title != "First Song" || info.DurationMS() != 215000 {
		t.Errorf("Unexpected info: %+v", info)
	}
	if info.Raw == nil {
		t.Fatal("Raw metadata should be kept")
	}
	if _, ok := info.Raw["view_count"]; !ok {
		t.Error("Raw metadata should contain fields outside the typed struct")
	}
}

func TestParseInfoRejectsInvalidJSON(t *testing.T) {
	if _, err := parseInfo([]byte("{not json")); err == nil {
		t.Error("Expected error for invalid json")
	}
}

func TestDownloadArgsConvertToPlayableFormat(t *testing.T) {
	args := downloadArgs("https://www.youtube.com/watch?v=vid1", "/tmp/chrono_abc.%(ext)s")

	has := func(want string) bool {
		for _, a := range args {
			if a == want {
				return true
			}
		}
		return false
	}
	if !has("-x") {
		t.Error("Download should extract audio")
	}
	for i, a := range args {
		if a == "--audio-format" {
			if i+1 >= len(args) || args[i+1] != "mp3" {
				t.Errorf("Audio format should be mp3, got %v", args[i:])
			}
			return
		}
	}
	t.Error("Download should force a format the playback decoders accept")
}

func TestResolveDownloadedPathPrefersConverted(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "chrono_abc.%(ext)s")

	// An interrupted conversion can leave the original next to the mp3.
	for _, name := range []string{"chrono_abc.webm", "chrono_abc.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("audio"), 0o644); err != nil {
			t.Fatalf("Failed to write fixture: %v", err)
		}
	}

	path, err := resolveDownloadedPath(template)
	if err != nil {
		t.Fatalf("resolveDownloadedPath failed: %v", err)
	}
	if path != filepath.Join(dir, "chrono_abc.mp3") {
		t.Errorf("Expected the mp3 to win, got %s", path)
	}
}

func TestResolveDownloadedPath(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "chrono_abc.%(ext)s")

	if _, err := resolveDownloadedPath(template); err == nil {
		t.Error("Expected error when no file matches the template")
	}

	written := filepath.Join(dir, "chrono_abc.webm")
	if err := os.WriteFile(written, []byte("audio"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	path, err := resolveDownloadedPath(template)
	if err != nil {
		t.Fatalf("resolveDownloadedPath failed: %v", err)
	}
	if path != written {
		t.Errorf("Expected %s, got %s", written, path)
	}
}

func TestAvailableMissingBinary(t *testing.T) {
	y := &YTDLP{Binary: "definitely-not-a-real-binary-xyz"}
	if err := y.Available(); err == nil {
		t.Error("Expected error for missing binary")
	}
}
