package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/khinsider-downloader/internal/khinsider"
)

// Site layout variants selectable via Settings.SiteVariant.
const (
	// VariantMarker flags download links by their "Click here" marker
	// text and cover art by its albumImage container.
	VariantMarker = "marker"

	// VariantMediaHost flags links by their target host matching the
	// media-asset domain.
	VariantMediaHost = "media-host"
)

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	OutputDir      string  `json:"output_dir"`
	Format         string  `json:"format"`
	TimeoutSeconds float64 `json:"timeout_seconds"` // 0 = no timeout
	ChunkSize      int     `json:"chunk_size"`
	DownloadCovers bool    `json:"download_covers"`
	Verbose        bool    `json:"verbose"`

	// Site layout settings
	SiteVariant     string `json:"site_variant"` // marker, media-host
	MediaHost       string `json:"media_host"`
	TrailingColumns int    `json:"trailing_columns"`

	// Tag settings
	ModifyTags           bool `json:"modify_tags"`
	EmbedCoverArt        bool `json:"embed_cover_art"`
	CoverArtMaxSize      int  `json:"cover_art_max_size"`
	ConvertCoverArtToJPG bool `json:"convert_cover_art_to_jpg"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist"`
	PlaylistFormat string `json:"playlist_format"` // m3u, pls
	M3UExtended    bool   `json:"m3u_extended"`

	// Range window over the tracklist, 1-based inclusive. Nil means
	// unbounded. Set from command-line flags only, never persisted.
	Start *int `json:"-"`
	End   *int `json:"-"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		OutputDir:      ".",
		Format:         "mp3",
		TimeoutSeconds: 0,
		ChunkSize:      1024,
		DownloadCovers: false,
		Verbose:        false,

		SiteVariant:     VariantMarker,
		MediaHost:       khinsider.DefaultMediaHost,
		TrailingColumns: khinsider.DefaultTrailingColumns,

		ModifyTags:           true,
		EmbedCoverArt:        true,
		CoverArtMaxSize:      1000,
		ConvertCoverArtToJPG: true,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,
	}
}

// Load reads settings from a JSON file. A missing file yields defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Timeout converts TimeoutSeconds to a duration.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds * float64(time.Second))
}

// Classifier returns the link classifier for the configured site layout
// variant.
func (s *Settings) Classifier() khinsider.LinkClassifier {
	switch s.SiteVariant {
	case VariantMediaHost:
		host := s.MediaHost
		if host == "" {
			host = khinsider.DefaultMediaHost
		}
		return khinsider.MediaHostClassifier{Host: host}
	default:
		return khinsider.DefaultClassifier()
	}
}
