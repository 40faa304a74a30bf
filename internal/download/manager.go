package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/handiism/khinsider-downloader/internal/audio"
	"github.com/handiism/khinsider-downloader/internal/config"
	nethttp "github.com/handiism/khinsider-downloader/internal/http"
	ioutils "github.com/handiism/khinsider-downloader/internal/io"
	"github.com/handiism/khinsider-downloader/internal/khinsider"
	"github.com/handiism/khinsider-downloader/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// TransferFunc receives byte progress for the file currently being
// transferred: its name, the bytes written so far and the declared
// total.
type TransferFunc func(name string, written, total int64)

// Fetcher is the transport the Manager drives: page fetches and file
// transfers. Implemented by the http package's Client; tests substitute
// a fake to assert on network activity.
type Fetcher interface {
	GetString(ctx context.Context, url string) (string, error)
	DownloadFile(ctx context.Context, url, destPath string, chunkSize int, onProgress nethttp.ProgressFunc) (time.Duration, error)
}

// RangeError reports an invalid start/end window over the tracklist.
// Bounds are 1-based inclusive; zero marks an unset bound in the
// message.
type RangeError struct {
	Start  int
	End    int
	Tracks int
}

func (e *RangeError) Error() string {
	if e.Start != 0 && e.End != 0 && e.Start > e.End {
		return fmt.Sprintf("start index %d cannot exceed end index %d", e.Start, e.End)
	}
	return fmt.Sprintf("track range [%d, %d] is outside the tracklist (1..%d)", e.Start, e.End, e.Tracks)
}

// InvalidDirectoryError reports an output path that is not an existing
// directory.
type InvalidDirectoryError struct {
	Path string
}

func (e *InvalidDirectoryError) Error() string {
	return fmt.Sprintf("%q is not a valid directory", e.Path)
}

// Manager drives one album download session.
//
// The pipeline is strictly sequential: one HTTP request in flight at a
// time, one file written at a time. Covers (when requested) complete
// before any track begins; tracks are attempted in tracklist order,
// honoring the start/end window. There is no retry, resume or
// checkpoint; the first transport or structural error ends the session.
type Manager struct {
	settings *config.Settings
	client   Fetcher
	parser   *khinsider.Parser
	tagger   *audio.Tagger
	playlist *audio.PlaylistCreator

	album *model.Album

	onProgress func(ProgressEvent)
	onTransfer TransferFunc

	totalFiles   int32
	doneFiles    int32
	elapsedNanos int64
	curWritten   int64
	curTotal     int64
}

// NewManager creates a Manager over the given transport.
//
// onProgress receives per-item status lines; onTransfer receives byte
// progress of the file currently downloading. Both may be nil.
func NewManager(settings *config.Settings, client Fetcher, onProgress func(ProgressEvent), onTransfer TransferFunc) *Manager {
	var playlistFormat audio.PlaylistFormat
	switch settings.PlaylistFormat {
	case "pls":
		playlistFormat = audio.FormatPLS
	default:
		playlistFormat = audio.FormatM3U
	}

	return &Manager{
		settings:   settings,
		client:     client,
		parser:     khinsider.NewParser(settings.Classifier(), settings.TrailingColumns),
		tagger:     audio.NewTagger(audio.DefaultTagConfig()),
		playlist:   audio.NewPlaylistCreator(playlistFormat, settings.M3UExtended),
		onProgress: onProgress,
		onTransfer: onTransfer,
	}
}

// Initialize validates the album URL, fetches the page and extracts the
// album. Must be called before Run.
func (m *Manager) Initialize(ctx context.Context, albumURL string) (*model.Album, error) {
	if err := khinsider.ValidateAlbumURL(albumURL); err != nil {
		return nil, err
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching album page: %s", albumURL), Level: LevelVerbose})

	html, err := m.client.GetString(ctx, albumURL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", albumURL, err)
	}

	album, err := m.parser.ParseAlbumPage(albumURL, html)
	if err != nil {
		return nil, err
	}

	m.album = album
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Found album: %s (%d tracks)", album.Name, len(album.Tracks)),
		Level:   LevelVerbose,
	})
	return album, nil
}

// Album returns the extracted album, or nil before Initialize.
func (m *Manager) Album() *model.Album {
	return m.album
}

// Run performs the download session and returns the total wall-clock
// time spent transferring, summed over every completed transfer.
//
// Validation happens up front, before any network activity: the output
// directory must exist and the start/end window must lie within the
// tracklist. Covers (when requested) are downloaded unconditionally,
// the range window applies to tracks only. A track whose requested
// format is unavailable is skipped with a warning; any other failure
// aborts the session.
func (m *Manager) Run(ctx context.Context) (time.Duration, error) {
	album := m.album
	if album == nil {
		return 0, errors.New("manager not initialized")
	}

	if !ioutils.DirExists(m.settings.OutputDir) {
		return 0, &InvalidDirectoryError{Path: m.settings.OutputDir}
	}
	if err := validateRange(m.settings.Start, m.settings.End, len(album.Tracks)); err != nil {
		return 0, err
	}

	m.planTotals(album)

	var total time.Duration
	var artwork []byte

	if m.settings.DownloadCovers {
		for i, cover := range album.Covers {
			m.progress(ProgressEvent{
				Message: fmt.Sprintf("Downloading cover [%d/%d]...", i+1, len(album.Covers)),
				Level:   LevelInfo,
			})

			elapsed, dest, err := m.downloadCover(ctx, cover)
			if err != nil {
				return total, err
			}
			total += elapsed

			if artwork == nil && m.settings.EmbedCoverArt {
				artwork = m.loadArtwork(dest)
			}
		}
	}

	var entries []audio.Entry
	for i, track := range album.Tracks {
		pos := i + 1
		if m.settings.Start != nil && pos < *m.settings.Start {
			continue
		}
		if m.settings.End != nil && pos > *m.settings.End {
			break
		}

		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Downloading %q [%d/%d]...", track.Name(), pos, len(album.Tracks)),
			Level:   LevelInfo,
		})

		elapsed, fileName, err := m.downloadTrack(ctx, track, artwork)
		if err != nil {
			var fmtErr *khinsider.FormatUnavailableError
			if errors.As(err, &fmtErr) {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping: %v", fmtErr), Level: LevelWarning})
				continue
			}
			return total, err
		}
		total += elapsed

		d, ok := track.Duration()
		entries = append(entries, audio.Entry{
			Title:       track.Name(),
			Duration:    d,
			HasDuration: ok,
			File:        fileName,
		})
	}

	if m.settings.CreatePlaylist && len(entries) > 0 {
		m.writePlaylist(album, entries)
	}

	return total, nil
}

// GetProgress returns the files completed, the files planned for this
// session and the elapsed transfer time so far. Safe to call from
// another goroutine while Run is in flight.
func (m *Manager) GetProgress() (done, planned int32, elapsed time.Duration) {
	return atomic.LoadInt32(&m.doneFiles),
		atomic.LoadInt32(&m.totalFiles),
		time.Duration(atomic.LoadInt64(&m.elapsedNanos))
}

// CurrentTransfer returns the byte progress of the file currently
// downloading. Safe to call from another goroutine while Run is in
// flight.
func (m *Manager) CurrentTransfer() (written, total int64) {
	return atomic.LoadInt64(&m.curWritten), atomic.LoadInt64(&m.curTotal)
}

// validateRange checks the 1-based inclusive window against the
// tracklist length. Nil bounds are unbounded.
func validateRange(start, end *int, tracks int) error {
	if start != nil && (*start < 1 || *start > tracks) {
		return &RangeError{Start: *start, End: deref(end), Tracks: tracks}
	}
	if end != nil && (*end < 1 || *end > tracks) {
		return &RangeError{Start: deref(start), End: *end, Tracks: tracks}
	}
	if start != nil && end != nil && *start > *end {
		return &RangeError{Start: *start, End: *end, Tracks: tracks}
	}
	return nil
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// planTotals counts the files this session will attempt, for progress
// reporting.
func (m *Manager) planTotals(album *model.Album) {
	var planned int32
	if m.settings.DownloadCovers {
		planned += int32(len(album.Covers))
	}
	for i := range album.Tracks {
		pos := i + 1
		if m.settings.Start != nil && pos < *m.settings.Start {
			continue
		}
		if m.settings.End != nil && pos > *m.settings.End {
			break
		}
		planned++
	}
	atomic.StoreInt32(&m.totalFiles, planned)
	atomic.StoreInt32(&m.doneFiles, 0)
	atomic.StoreInt64(&m.elapsedNanos, 0)
}

// downloadCover transfers one cover image into the output directory and
// returns the elapsed time and the destination path.
func (m *Manager) downloadCover(ctx context.Context, cover model.Cover) (time.Duration, string, error) {
	if m.settings.Verbose {
		m.progress(ProgressEvent{Message: "Cover link: " + cover.URL, Level: LevelVerbose})
	}

	elapsed, dest, err := m.transfer(ctx, cover.URL)
	if err != nil {
		return 0, "", err
	}
	return elapsed, dest, nil
}

// downloadTrack resolves the track's format-specific file URL via its
// detail page, transfers it and optionally tags the result. Returns the
// elapsed time and the local file name.
func (m *Manager) downloadTrack(ctx context.Context, track *model.Track, artwork []byte) (time.Duration, string, error) {
	detailHTML, err := m.client.GetString(ctx, track.PageURL)
	if err != nil {
		return 0, "", fmt.Errorf("fetching track page %s: %w", track.PageURL, err)
	}

	links, err := m.parser.ExtractDownloadLinks(track.PageURL, detailHTML)
	if err != nil {
		return 0, "", err
	}

	link, err := khinsider.SelectFormatLink(links, m.settings.Format, track.Name())
	if err != nil {
		return 0, "", err
	}

	if m.settings.Verbose {
		m.progress(ProgressEvent{Message: "Song link: " + link, Level: LevelVerbose})
	}

	elapsed, dest, err := m.transfer(ctx, link)
	if err != nil {
		return 0, "", err
	}

	if m.settings.ModifyTags && strings.EqualFold(m.settings.Format, "mp3") {
		if err := m.tagger.SaveTags(dest, track, m.album, artwork); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", filepath.Base(dest), err), Level: LevelWarning})
		}
	}

	return elapsed, filepath.Base(dest), nil
}

// transfer streams one URL into the output directory, counting it
// towards the session totals.
func (m *Manager) transfer(ctx context.Context, url string) (time.Duration, string, error) {
	name, err := ioutils.FileNameFromURL(url)
	if err != nil {
		return 0, "", err
	}
	dest := filepath.Join(m.settings.OutputDir, name)

	elapsed, err := m.client.DownloadFile(ctx, url, dest, m.settings.ChunkSize, func(written, total int64) {
		atomic.StoreInt64(&m.curWritten, written)
		atomic.StoreInt64(&m.curTotal, total)
		if m.onTransfer != nil {
			m.onTransfer(name, written, total)
		}
	})
	if err != nil {
		return 0, "", err
	}

	atomic.AddInt32(&m.doneFiles, 1)
	atomic.AddInt64(&m.elapsedNanos, int64(elapsed))
	return elapsed, dest, nil
}

// loadArtwork reads a downloaded cover back and prepares it for tag
// embedding. Failures only cost the embedded artwork, not the session.
func (m *Manager) loadArtwork(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error reading cover art: %v", err), Level: LevelWarning})
		return nil
	}

	prepared, err := ioutils.PrepareCoverArt(data, m.settings.CoverArtMaxSize, m.settings.ConvertCoverArtToJPG)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error preparing cover art: %v", err), Level: LevelWarning})
		return nil
	}
	return prepared
}

// writePlaylist writes the session playlist next to the downloaded
// files.
func (m *Manager) writePlaylist(album *model.Album, entries []audio.Entry) {
	name := ioutils.SanitizeFileName(album.Name)
	if name == "" {
		name = "playlist"
	}
	path := filepath.Join(m.settings.OutputDir, name+m.playlist.Extension())

	content := m.playlist.Create(album.Name, entries)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: "Created playlist " + filepath.Base(path), Level: LevelSuccess})
}

func (m *Manager) progress(event ProgressEvent) {
	if event.Level == LevelVerbose && !m.settings.Verbose {
		return
	}
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
