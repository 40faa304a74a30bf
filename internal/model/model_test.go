package model

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		input  string
		want   time.Duration
		wantOK bool
	}{
		{"3:25", 3*time.Minute + 25*time.Second, true},
		{"0:07", 7 * time.Second, true},
		{"1:02:45", time.Hour + 2*time.Minute + 45*time.Second, true},
		{"45", 45 * time.Second, true},
		{" 3:25 ", 3*time.Minute + 25*time.Second, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1:2:3:4", 0, false},
		{"-1:00", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseClock(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseClock(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrack_Attributes(t *testing.T) {
	track := NewTrack("https://example.com/album/track-a", []Attribute{
		{Key: "#", Value: "1"},
		{Key: "song name", Value: "Track A"},
		{Key: "duration", Value: "3:25"},
		{Key: "mp3", Value: "3.2 MB"},
	})

	if track.Name() != "Track A" {
		t.Errorf("Name() = %q, want %q", track.Name(), "Track A")
	}

	if v, ok := track.Get("mp3"); !ok || v != "3.2 MB" {
		t.Errorf(`Get("mp3") = %q, %v, want "3.2 MB", true`, v, ok)
	}

	if _, ok := track.Get("flac"); ok {
		t.Error(`Get("flac") should report a missing key`)
	}

	// Order must follow the table, not insertion by key.
	want := []string{"1", "Track A", "3:25", "3.2 MB"}
	got := track.Values()
	if len(got) != len(want) {
		t.Fatalf("Values() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func testAlbum() *Album {
	return &Album{
		URL:             "https://downloads.khinsider.com/game-soundtracks/album/test",
		Name:            "Test Album",
		Headers:         []string{"", "#", "Song Name", "Duration", "MP3", "FLAC", "", ""},
		Footers:         []string{"", "", "Total:", "1:00:00", "32 MB", "100 MB", "", ""},
		TrailingColumns: 2,
		Tracks: []*Track{
			NewTrack("https://example.com/t1", []Attribute{
				{Key: "song name", Value: "One"},
				{Key: "duration", Value: "3:00"},
			}),
			NewTrack("https://example.com/t2", []Attribute{
				{Key: "song name", Value: "Two"},
				{Key: "duration", Value: "2:30"},
			}),
		},
	}
}

func TestAlbum_Formats(t *testing.T) {
	album := testAlbum()

	formats := album.Formats()
	if len(formats) != 2 || formats[0] != "mp3" || formats[1] != "flac" {
		t.Errorf("Formats() = %v, want [mp3 flac]", formats)
	}

	if !album.HasFormat("FLAC") {
		t.Error(`HasFormat("FLAC") should be case-insensitive`)
	}
	if album.HasFormat("ogg") {
		t.Error(`HasFormat("ogg") should be false`)
	}
}

func TestAlbum_DisplayHeaders(t *testing.T) {
	album := testAlbum()

	want := []string{"#", "Song Name", "Duration", "MP3", "FLAC"}
	got := album.DisplayHeaders()
	if len(got) != len(want) {
		t.Fatalf("DisplayHeaders() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DisplayHeaders()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAlbum_TotalDuration(t *testing.T) {
	album := testAlbum()

	want := 5*time.Minute + 30*time.Second
	if got := album.TotalDuration(); got != want {
		t.Errorf("TotalDuration() = %v, want %v", got, want)
	}
}

func TestAlbum_FormatSizes(t *testing.T) {
	album := testAlbum()

	sizes := album.FormatSizes()
	if len(sizes) != 2 {
		t.Fatalf("FormatSizes() = %v, want 2 entries", sizes)
	}
	if sizes[0] != (FormatSize{Format: "mp3", Size: "32 MB"}) {
		t.Errorf("FormatSizes()[0] = %v", sizes[0])
	}
	if sizes[1] != (FormatSize{Format: "flac", Size: "100 MB"}) {
		t.Errorf("FormatSizes()[1] = %v", sizes[1])
	}
}

func TestAlbum_FormatSizes_NoMarker(t *testing.T) {
	album := testAlbum()
	album.Footers = []string{"", "", "", ""}

	if sizes := album.FormatSizes(); sizes != nil {
		t.Errorf("FormatSizes() without marker = %v, want nil", sizes)
	}
}
