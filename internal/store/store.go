package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/DeveloperAJ2799/Chronosonic/internal/model"
)

// Document file names inside the data directory
const (
	configFile    = "config.json"
	playlistsFile = "playlists.json"
	historyFile   = "search_history.json"
)

// historyLimit bounds the search history document.
const historyLimit = 200

// Default values
const (
	DefaultVolume   = 80
	DefaultGeometry = "1100x720"
	DefaultTheme    = "dark"
	DefaultQuality  = "audio"
)

// Config is the persisted application configuration.
type Config struct {
	Volume       int    `json:"volume"`
	Geometry     string `json:"geometry"`
	Theme        string `json:"theme"`
	LastPlaylist string `json:"last_playlist"`
	Quality      string `json:"quality"`
}

// DefaultConfig returns the configuration used on first run.
func DefaultConfig() Config {
	return Config{
		Volume:   DefaultVolume,
		Geometry: DefaultGeometry,
		Theme:    DefaultTheme,
		Quality:  DefaultQuality,
	}
}

// Playlists maps playlist name to its saved tracks.
type Playlists map[string][]model.TrackSnapshot

// PlaylistFile is the on-disk shape of an exported playlist.
type PlaylistFile struct {
	Name   string                `json:"name"`
	Tracks []model.TrackSnapshot `json:"tracks"`
}

// Store reads and writes the JSON documents under a single data directory.
// Every load degrades to a default value on a missing or corrupt file; the
// corrupt file is left on disk for inspection and only overwritten by the
// next save.
type Store struct {
	dir    string
	logger *log.Logger
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string, logger *log.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the data directory path.
func (s *Store) Dir() string {
	return s.dir
}

// LoadConfig reads config.json, falling back to defaults.
func (s *Store) LoadConfig() Config {
	cfg := DefaultConfig()
	if !s.load(configFile, &cfg) {
		return DefaultConfig()
	}
	if cfg.Volume < 0 {
		cfg.Volume = 0
	}
	if cfg.Volume > 100 {
		cfg.Volume = 100
	}
	return cfg
}

// SaveConfig writes config.json.
func (s *Store) SaveConfig(cfg Config) error {
	return s.save(configFile, cfg)
}

// LoadPlaylists reads playlists.json, falling back to an empty map.
func (s *Store) LoadPlaylists() Playlists {
	var p Playlists
	if !s.load(playlistsFile, &p) || p == nil {
		return Playlists{}
	}
	return p
}

// SavePlaylists writes playlists.json.
func (s *Store) SavePlaylists(p Playlists) error {
	return s.save(playlistsFile, p)
}

// SavePlaylist upserts one named playlist.
func (s *Store) SavePlaylist(name string, tracks []model.TrackSnapshot) error {
	p := s.LoadPlaylists()
	p[name] = tracks
	return s.SavePlaylists(p)
}

// DeletePlaylist removes one named playlist. Unknown names are a no-op.
func (s *Store) DeletePlaylist(name string) error {
	p := s.LoadPlaylists()
	if _, ok := p[name]; !ok {
		return nil
	}
	delete(p, name)
	return s.SavePlaylists(p)
}

// PlaylistNames returns the saved playlist names, sorted.
func (s *Store) PlaylistNames() []string {
	p := s.LoadPlaylists()
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadHistory reads the search history, newest first.
func (s *Store) LoadHistory() []string {
	var h []string
	if !s.load(historyFile, &h) {
		return nil
	}
	return h
}

// AddHistory prepends a query, moving an existing duplicate to the front,
// and persists the bounded list.
func (s *Store) AddHistory(query string) ([]string, error) {
	h := s.LoadHistory()

	out := make([]string, 0, len(h)+1)
	out = append(out, query)
	for _, q := range h {
		if q != query {
			out = append(out, q)
		}
	}
	if len(out) > historyLimit {
		out = out[:historyLimit]
	}

	return out, s.save(historyFile, out)
}

// ExportPlaylist writes a single playlist to an arbitrary path.
func (s *Store) ExportPlaylist(path, name string, tracks []model.TrackSnapshot) error {
	data, err := json.MarshalIndent(PlaylistFile{Name: name, Tracks: tracks}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode playlist: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write playlist: %w", err)
	}
	return nil
}

// ImportPlaylist reads a playlist file written by ExportPlaylist.
func (s *Store) ImportPlaylist(path string) (*PlaylistFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read playlist: %w", err)
	}

	var pf PlaylistFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("decode playlist: %w", err)
	}
	if pf.Name == "" {
		base := filepath.Base(path)
		pf.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	return &pf, nil
}

// load decodes a document into v. Returns false when the file is missing,
// unreadable, or corrupt; a partial decode may have touched v, so callers
// fall back to a fresh default value.
func (s *Store) load(name string, v any) bool {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read document", "file", name, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("Document is corrupt, using defaults", "file", name, "error", err)
		return false
	}
	return true
}

func (s *Store) save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
