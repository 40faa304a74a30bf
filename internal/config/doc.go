// Package config provides configuration management for
// khinsider-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Mapping the configured site-layout variant to a link classifier
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads MP3s into the current directory, 1 KiB chunks,
//	// no timeout, ID3 tagging enabled
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	// Uses defaults if the file doesn't exist
//
// # Site Layout Variants
//
// The catalog has used different markup for its download and cover-art
// links over time. The "site_variant" setting selects the matching link
// classifier ("marker" or "media-host"); see the khinsider package.
//
// The start/end range window is a per-invocation choice and comes only
// from command-line flags, never from the settings file.
package config
