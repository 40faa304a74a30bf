package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/handiism/khinsider-downloader/internal/config"
	nethttp "github.com/handiism/khinsider-downloader/internal/http"
	"github.com/handiism/khinsider-downloader/internal/khinsider"
)

const testAlbumURL = khinsider.AlbumURLPrefix + "test-album"

// fakeFetcher serves pages from a map and records every network
// interaction, so tests can assert on request counts and order.
type fakeFetcher struct {
	pages         map[string]string
	getCalls      int
	downloadCalls int
	downloaded    []string
}

func (f *fakeFetcher) GetString(_ context.Context, url string) (string, error) {
	f.getCalls++
	page, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("no page registered for %s", url)
	}
	return page, nil
}

func (f *fakeFetcher) DownloadFile(_ context.Context, url, destPath string, chunkSize int, onProgress nethttp.ProgressFunc) (time.Duration, error) {
	f.downloadCalls++
	f.downloaded = append(f.downloaded, url)
	if onProgress != nil {
		onProgress(512, 1024)
		onProgress(1024, 1024)
	}
	return 10 * time.Millisecond, nil
}

// albumPage builds an album page with n tracks and the given number of
// cover images.
func albumPage(n, covers int) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><div id="pageContent"><h2>Test Album</h2>`)
	for i := 1; i <= covers; i++ {
		fmt.Fprintf(&sb, `<div class="albumImage"><a href="/covers/cover-%d.jpg"><img src="/covers/thumb-%d.jpg"/></a></div>`, i, i)
	}
	sb.WriteString(`<table id="songlist">`)
	sb.WriteString(`<tr id="songlist_header"><th></th><th>#</th><th>Song Name</th><th>MP3</th><th>FLAC</th></tr>`)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb,
			`<tr><td></td><td>%d.</td><td><a href="/track-%d">Track %d</a></td><td>1:00</td><td>2.2 MB</td><td>14 MB</td></tr>`,
			i, i, i)
	}
	sb.WriteString(`</table></div></body></html>`)
	return sb.String()
}

// detailPage builds a track detail page offering download links for the
// given formats.
func detailPage(i int, formats ...string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><div id="pageContent">`)
	for _, f := range formats {
		fmt.Fprintf(&sb, `<p><a href="/files/track-%d.%s"><span>Click here to download as %s</span></a></p>`,
			i, f, strings.ToUpper(f))
	}
	sb.WriteString(`</div></body></html>`)
	return sb.String()
}

// newFakeFetcher registers an album page with n tracks (each offering
// mp3 and flac) and the given number of covers.
func newFakeFetcher(n, covers int) *fakeFetcher {
	pages := map[string]string{testAlbumURL: albumPage(n, covers)}
	for i := 1; i <= n; i++ {
		pages[fmt.Sprintf("https://downloads.khinsider.com/track-%d", i)] = detailPage(i, "mp3", "flac")
	}
	return &fakeFetcher{pages: pages}
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	settings := config.DefaultSettings()
	settings.OutputDir = t.TempDir()
	settings.ModifyTags = false
	return settings
}

func intPtr(v int) *int { return &v }

func TestManager_Initialize(t *testing.T) {
	fetcher := newFakeFetcher(3, 0)
	mgr := NewManager(testSettings(t), fetcher, nil, nil)

	album, err := mgr.Initialize(context.Background(), testAlbumURL)
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	if album.Name != "Test Album" {
		t.Errorf("album name = %q, want %q", album.Name, "Test Album")
	}
	if len(album.Tracks) != 3 {
		t.Errorf("track count = %d, want 3", len(album.Tracks))
	}
	if mgr.Album() != album {
		t.Error("Album() should return the initialized album")
	}
}

func TestManager_Initialize_InvalidURL(t *testing.T) {
	fetcher := newFakeFetcher(1, 0)
	mgr := NewManager(testSettings(t), fetcher, nil, nil)

	_, err := mgr.Initialize(context.Background(), "https://example.com/album/foo")

	var urlErr *khinsider.InvalidURLError
	if !errors.As(err, &urlErr) {
		t.Fatalf("Initialize() error = %v, want *InvalidURLError", err)
	}
	if fetcher.getCalls != 0 {
		t.Errorf("invalid URL cost %d requests, want 0", fetcher.getCalls)
	}
}

func TestManager_Run_NotInitialized(t *testing.T) {
	mgr := NewManager(testSettings(t), newFakeFetcher(1, 0), nil, nil)

	if _, err := mgr.Run(context.Background()); err == nil {
		t.Fatal("Run() before Initialize should fail")
	}
}

func TestManager_Run_RangeValidation(t *testing.T) {
	tests := []struct {
		name       string
		start, end *int
	}{
		{"start zero", intPtr(0), nil},
		{"start beyond tracklist", intPtr(6), nil},
		{"end zero", nil, intPtr(0)},
		{"end beyond tracklist", nil, intPtr(9)},
		{"start after end", intPtr(3), intPtr(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings(t)
			settings.Start = tt.start
			settings.End = tt.end

			fetcher := newFakeFetcher(5, 0)
			mgr := NewManager(settings, fetcher, nil, nil)
			if _, err := mgr.Initialize(context.Background(), testAlbumURL); err != nil {
				t.Fatalf("Initialize() error: %v", err)
			}
			callsAfterInit := fetcher.getCalls

			_, err := mgr.Run(context.Background())

			var rangeErr *RangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("Run() error = %v, want *RangeError", err)
			}
			if fetcher.getCalls != callsAfterInit || fetcher.downloadCalls != 0 {
				t.Errorf("invalid range cost network activity: %d gets (had %d), %d downloads",
					fetcher.getCalls, callsAfterInit, fetcher.downloadCalls)
			}
		})
	}
}

func TestManager_Run_Window(t *testing.T) {
	settings := testSettings(t)
	settings.Start = intPtr(2)
	settings.End = intPtr(4)

	var events []ProgressEvent
	fetcher := newFakeFetcher(5, 0)
	mgr := NewManager(settings, fetcher, func(e ProgressEvent) { events = append(events, e) }, nil)
	if _, err := mgr.Initialize(context.Background(), testAlbumURL); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	elapsed, err := mgr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := []string{
		"https://downloads.khinsider.com/files/track-2.mp3",
		"https://downloads.khinsider.com/files/track-3.mp3",
		"https://downloads.khinsider.com/files/track-4.mp3",
	}
	if len(fetcher.downloaded) != len(want) {
		t.Fatalf("downloaded %d files, want %d: %v", len(fetcher.downloaded), len(want), fetcher.downloaded)
	}
	for i, url := range want {
		if fetcher.downloaded[i] != url {
			t.Errorf("download %d = %q, want %q", i, fetcher.downloaded[i], url)
		}
	}

	// Elapsed time is the sum over completed transfers.
	if elapsed != 30*time.Millisecond {
		t.Errorf("elapsed = %v, want 30ms", elapsed)
	}

	// Progress counts against the full tracklist, not the window.
	joined := eventMessages(events)
	for _, marker := range []string{"[2/5]", "[3/5]", "[4/5]"} {
		if !strings.Contains(joined, marker) {
			t.Errorf("progress missing %s:\n%s", marker, joined)
		}
	}
	for _, marker := range []string{"[1/5]", "[5/5]"} {
		if strings.Contains(joined, marker) {
			t.Errorf("progress should not include %s:\n%s", marker, joined)
		}
	}

	done, planned, sessionElapsed := mgr.GetProgress()
	if done != 3 || planned != 3 {
		t.Errorf("GetProgress() = %d/%d, want 3/3", done, planned)
	}
	if sessionElapsed != elapsed {
		t.Errorf("GetProgress() elapsed = %v, want %v", sessionElapsed, elapsed)
	}
}

func TestManager_Run_FormatUnavailableSkips(t *testing.T) {
	settings := testSettings(t)
	settings.Format = "flac"

	fetcher := newFakeFetcher(2, 0)
	// First track offers mp3 only.
	fetcher.pages["https://downloads.khinsider.com/track-1"] = detailPage(1, "mp3")

	var events []ProgressEvent
	mgr := NewManager(settings, fetcher, func(e ProgressEvent) { events = append(events, e) }, nil)
	if _, err := mgr.Initialize(context.Background(), testAlbumURL); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	if _, err := mgr.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(fetcher.downloaded) != 1 || fetcher.downloaded[0] != "https://downloads.khinsider.com/files/track-2.flac" {
		t.Errorf("downloaded = %v, want only track 2 flac", fetcher.downloaded)
	}

	var warned bool
	for _, e := range events {
		if e.Level == LevelWarning && strings.Contains(e.Message, "FLAC") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("missing skip warning, events:\n%s", eventMessages(events))
	}
}

func TestManager_Run_InvalidDirectory(t *testing.T) {
	settings := testSettings(t)
	settings.OutputDir = filepath.Join(settings.OutputDir, "missing")

	fetcher := newFakeFetcher(2, 0)
	mgr := NewManager(settings, fetcher, nil, nil)
	if _, err := mgr.Initialize(context.Background(), testAlbumURL); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	callsAfterInit := fetcher.getCalls

	_, err := mgr.Run(context.Background())

	var dirErr *InvalidDirectoryError
	if !errors.As(err, &dirErr) {
		t.Fatalf("Run() error = %v, want *InvalidDirectoryError", err)
	}
	if fetcher.getCalls != callsAfterInit || fetcher.downloadCalls != 0 {
		t.Error("invalid directory should cost no network activity")
	}
}

func TestManager_Run_CoversFirst(t *testing.T) {
	settings := testSettings(t)
	settings.DownloadCovers = true
	settings.EmbedCoverArt = false
	// Covers are downloaded regardless of the track window.
	settings.Start = intPtr(2)
	settings.End = intPtr(2)

	fetcher := newFakeFetcher(3, 2)
	mgr := NewManager(settings, fetcher, nil, nil)
	if _, err := mgr.Initialize(context.Background(), testAlbumURL); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	if _, err := mgr.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := []string{
		"https://downloads.khinsider.com/covers/cover-1.jpg",
		"https://downloads.khinsider.com/covers/cover-2.jpg",
		"https://downloads.khinsider.com/files/track-2.mp3",
	}
	if len(fetcher.downloaded) != len(want) {
		t.Fatalf("downloaded = %v, want %v", fetcher.downloaded, want)
	}
	for i, url := range want {
		if fetcher.downloaded[i] != url {
			t.Errorf("download %d = %q, want %q", i, fetcher.downloaded[i], url)
		}
	}
}

func TestManager_Run_Playlist(t *testing.T) {
	settings := testSettings(t)
	settings.CreatePlaylist = true

	fetcher := newFakeFetcher(2, 0)
	mgr := NewManager(settings, fetcher, nil, nil)
	if _, err := mgr.Initialize(context.Background(), testAlbumURL); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if _, err := mgr.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(settings.OutputDir, "Test Album.m3u"))
	if err != nil {
		t.Fatalf("reading playlist: %v", err)
	}

	content := string(data)
	for _, want := range []string{
		"#EXTM3U\n",
		"#EXTINF:60,Track 1\ntrack-1.mp3\n",
		"#EXTINF:60,Track 2\ntrack-2.mp3\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("playlist missing %q, got:\n%s", want, content)
		}
	}
}

func TestManager_Run_TransferCallback(t *testing.T) {
	settings := testSettings(t)

	type transfer struct {
		name           string
		written, total int64
	}
	var transfers []transfer

	fetcher := newFakeFetcher(1, 0)
	mgr := NewManager(settings, fetcher, nil, func(name string, written, total int64) {
		transfers = append(transfers, transfer{name, written, total})
	})
	if _, err := mgr.Initialize(context.Background(), testAlbumURL); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if _, err := mgr.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(transfers) != 2 {
		t.Fatalf("got %d transfer callbacks, want 2", len(transfers))
	}
	last := transfers[len(transfers)-1]
	if last.name != "track-1.mp3" || last.written != 1024 || last.total != 1024 {
		t.Errorf("final transfer = %+v, want track-1.mp3 1024/1024", last)
	}
}

func TestRangeError_Message(t *testing.T) {
	err := &RangeError{Start: 3, End: 2, Tracks: 5}
	if !strings.Contains(err.Error(), "cannot exceed") {
		t.Errorf("inverted range message = %q", err.Error())
	}

	err = &RangeError{Start: 0, Tracks: 5}
	if !strings.Contains(err.Error(), "1..5") {
		t.Errorf("out of bounds message = %q", err.Error())
	}
}

func eventMessages(events []ProgressEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(e.Message)
		sb.WriteString("\n")
	}
	return sb.String()
}
