package audio

import (
	"fmt"
	"strings"
	"time"
)

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for duration/title info.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS
)

// Extension returns the file extension for the playlist format,
// including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case FormatPLS:
		return ".pls"
	default:
		return ".m3u"
	}
}

// Entry is one playlist line: a downloaded track's title, duration and
// local file name (relative, assuming the playlist sits next to the
// files).
type Entry struct {
	// Title is the track's display name.
	Title string

	// Duration is the track length; zero when unknown.
	Duration time.Duration

	// HasDuration reports whether Duration is meaningful.
	HasDuration bool

	// File is the track's file name.
	File string
}

// PlaylistCreator generates playlist files over the downloaded tracks.
//
// Example:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true)
//	content := creator.Create("Test Album", entries)
//	os.WriteFile(playlistPath, []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:205,Opening Theme
//	// 01 Opening Theme.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // for M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// extended only affects the M3U format.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Extension returns the file extension matching the creator's format,
// including the dot.
func (p *PlaylistCreator) Extension() string {
	return p.format.Extension()
}

// Create generates playlist content for the given entries.
//
// Returns the playlist as a string, ready to be written to a file next
// to the downloaded tracks.
func (p *PlaylistCreator) Create(albumName string, entries []Entry) string {
	switch p.format {
	case FormatPLS:
		return p.createPLS(entries)
	default:
		return p.createM3U(entries)
	}
}

func (p *PlaylistCreator) createM3U(entries []Entry) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, e := range entries {
		if p.extended {
			seconds := -1
			if e.HasDuration {
				seconds = int(e.Duration.Seconds())
			}
			fmt.Fprintf(&sb, "#EXTINF:%d,%s\n", seconds, e.Title)
		}
		sb.WriteString(e.File)
		sb.WriteString("\n")
	}

	return sb.String()
}

func (p *PlaylistCreator) createPLS(entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, e := range entries {
		n := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", n, e.File)
		fmt.Fprintf(&sb, "Title%d=%s\n", n, e.Title)
		length := -1
		if e.HasDuration {
			length = int(e.Duration.Seconds())
		}
		fmt.Fprintf(&sb, "Length%d=%d\n", n, length)
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}
