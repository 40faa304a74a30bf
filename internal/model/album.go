package model

import (
	"strings"
	"time"
)

// Cover is one piece of album artwork, identified by its absolute URL.
type Cover struct {
	// URL is the absolute URL of the image resource.
	URL string
}

// FormatSize pairs a download format with the album's total size in that
// format, as printed in the track table's footer row.
type FormatSize struct {
	// Format is the lowercased format label, e.g. "mp3".
	Format string

	// Size is the footer's display text, e.g. "32 MB".
	Size string
}

// Album represents one catalog album page after extraction.
//
// Headers and Footers are the cell texts of the track table's header and
// footer rows, in column order. Headers includes the synthetic "Duration"
// entry inserted after "Song Name" during extraction, and may contain
// empty strings for decorative columns.
//
// Example:
//
//	album.Formats()       // ["mp3", "flac"]
//	album.TotalDuration() // 1h2m45s
//	album.FormatSizes()   // [{mp3 32 MB} {flac 100 MB}]
type Album struct {
	// URL is the album page URL the album was extracted from.
	URL string

	// Name is the album's display name.
	Name string

	// Headers holds the header row cell texts, post synthesis.
	Headers []string

	// Footers holds the footer (totals) row cell texts.
	Footers []string

	// TrailingColumns is the number of non-format columns after the last
	// format header. Layout-dependent; the parser sets it.
	TrailingColumns int

	// Tracks holds one record per data row, in row order.
	Tracks []*Track

	// Covers holds the album art URLs found on the page.
	Covers []Cover
}

// footerTotalMarker is the literal label preceding the totals in the
// footer row.
const footerTotalMarker = "Total:"

// Formats returns the download formats offered by the album, lowercased.
//
// Format labels are the headers strictly between "Duration" and the
// trailing non-format columns.
func (a *Album) Formats() []string {
	start := -1
	for i, h := range a.Headers {
		if h == "Duration" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	end := len(a.Headers) - a.TrailingColumns
	if end < start {
		return nil
	}

	formats := make([]string, 0, end-start)
	for _, h := range a.Headers[start:end] {
		formats = append(formats, strings.ToLower(h))
	}
	return formats
}

// HasFormat reports whether the album offers the given format. The
// comparison is case-insensitive.
func (a *Album) HasFormat(format string) bool {
	format = strings.ToLower(format)
	for _, f := range a.Formats() {
		if f == format {
			return true
		}
	}
	return false
}

// DisplayHeaders returns the non-empty header labels, in order. These are
// the columns worth printing; empty headers mark decorative columns whose
// cells carry no track attribute.
func (a *Album) DisplayHeaders() []string {
	headers := make([]string, 0, len(a.Headers))
	for _, h := range a.Headers {
		if h != "" {
			headers = append(headers, h)
		}
	}
	return headers
}

// TotalDuration sums the parseable track durations.
//
// The footer also carries a total, but computing it from the rows keeps
// the value well-formed regardless of how the footer formats it.
func (a *Album) TotalDuration() time.Duration {
	var total time.Duration
	for _, track := range a.Tracks {
		if d, ok := track.Duration(); ok {
			total += d
		}
	}
	return total
}

// FormatSizes returns the per-format total sizes from the footer row.
//
// The sizes sit at fixed offsets after the literal "Total:" label: the
// entry immediately after it is the total duration, then one size per
// format in format order. Returns nil when the marker is absent.
func (a *Album) FormatSizes() []FormatSize {
	marker := -1
	for i, f := range a.Footers {
		if f == footerTotalMarker {
			marker = i
			break
		}
	}
	if marker < 0 {
		return nil
	}

	var sizes []FormatSize
	for i, format := range a.Formats() {
		pos := marker + 2 + i
		if pos >= len(a.Footers) {
			break
		}
		sizes = append(sizes, FormatSize{Format: format, Size: a.Footers[pos]})
	}
	return sizes
}
