package model

import (
	"strconv"
	"strings"
	"time"
)

// Attribute is one column value of a track row, keyed by the lowercased
// column header it was read under (e.g. "song name", "duration", "mp3").
//
// Attributes are kept as an ordered list rather than a map because the
// display order of the columns matters: the summary table prints them in
// the same order the catalog page does.
type Attribute struct {
	// Key is the lowercased header label the value was read under.
	Key string

	// Value is the display text of the table cell.
	Value string
}

// Track represents one row of the album track table.
//
// The attribute set varies per album because the catalog offers different
// format columns per release. A "duration" attribute is always present
// (possibly empty) since the header list is realigned with a synthetic
// Duration column during extraction.
//
// Example:
//
//	track.Name()     // "Opening Theme"
//	track.Get("mp3") // "3.2 MB", true
//	track.Duration() // 3m25s, true
type Track struct {
	// PageURL is the absolute URL of the track's detail page, which hosts
	// the actual download links.
	PageURL string

	// Attrs holds the row's column values in table order.
	Attrs []Attribute
}

// NewTrack creates a Track from its detail-page URL and ordered attributes.
func NewTrack(pageURL string, attrs []Attribute) *Track {
	return &Track{
		PageURL: pageURL,
		Attrs:   attrs,
	}
}

// Get returns the value of the attribute with the given key.
//
// The second return value reports whether the key exists at all, so an
// empty-but-present value can be told apart from a missing one.
func (t *Track) Get(key string) (string, bool) {
	for _, attr := range t.Attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Name returns the track's display name (the "song name" attribute).
func (t *Track) Name() string {
	name, _ := t.Get("song name")
	return name
}

// Duration parses the track's "duration" attribute.
//
// The catalog renders durations as colon-separated clock text, either
// "m:ss" or "h:mm:ss". The second return value is false when the
// attribute is absent, empty or not clock-shaped.
func (t *Track) Duration() (time.Duration, bool) {
	text, ok := t.Get("duration")
	if !ok {
		return 0, false
	}
	return ParseClock(text)
}

// Values returns the attribute values in table order, for rendering one
// summary table row.
func (t *Track) Values() []string {
	values := make([]string, len(t.Attrs))
	for i, attr := range t.Attrs {
		values[i] = attr.Value
	}
	return values
}

// ParseClock parses colon-separated clock text ("3:25", "1:02:45") into a
// duration. Returns false for empty or malformed input.
func ParseClock(text string) (time.Duration, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	parts := strings.Split(text, ":")
	if len(parts) > 3 {
		return 0, false
	}

	// Weight the fields from the right: seconds, minutes, hours.
	var seconds int64
	weight := int64(1)
	for i := len(parts) - 1; i >= 0; i-- {
		n, err := strconv.ParseInt(strings.TrimSpace(parts[i]), 10, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		seconds += n * weight
		weight *= 60
	}

	return time.Duration(seconds) * time.Second, true
}
