package config

import (
	"path/filepath"
	"testing"

	"github.com/handiism/khinsider-downloader/internal/khinsider"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if settings.Format != "mp3" || settings.ChunkSize != 1024 {
		t.Errorf("missing file should yield defaults, got %+v", settings)
	}
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "settings.json")

	settings := DefaultSettings()
	settings.Format = "flac"
	settings.SiteVariant = VariantMediaHost
	settings.MediaHost = "cdn.example.com"
	if err := settings.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Format != "flac" || loaded.SiteVariant != VariantMediaHost {
		t.Errorf("roundtrip lost fields, got %+v", loaded)
	}

	classifier, ok := loaded.Classifier().(khinsider.MediaHostClassifier)
	if !ok {
		t.Fatalf("Classifier() = %T, want MediaHostClassifier", loaded.Classifier())
	}
	if classifier.Host != "cdn.example.com" {
		t.Errorf("classifier host = %q", classifier.Host)
	}
}
