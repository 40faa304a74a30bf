package khinsider

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkClass is the role of an anchor on a catalog page.
type LinkClass int

const (
	// LinkOther marks anchors that are neither downloads nor cover art
	// (navigation, ads, forum links).
	LinkOther LinkClass = iota

	// LinkDownload marks anchors pointing at a downloadable media file.
	LinkDownload

	// LinkCoverArt marks anchors pointing at album artwork.
	LinkCoverArt
)

// Anchor is one anchor element, reduced to the properties the classifiers
// look at.
type Anchor struct {
	// Href is the anchor target, resolved to an absolute URL.
	Href string

	// Text is the anchor's trimmed text content, including nested
	// elements.
	Text string

	// Host is the hostname of Href, empty when Href is unparseable.
	Host string

	// InArtContainer reports whether the anchor sits inside an element
	// tagged as an album-art container.
	InArtContainer bool
}

// LinkClassifier decides the role of each anchor for one site-layout
// variant.
//
// The catalog has used several markups for its download and cover links
// over time: a nested "Click here" marker span, plain links onto the
// media-asset host, CSS classes. Each variant gets its own classifier,
// selected at configuration time, instead of branching on per-revision
// heuristics inline.
type LinkClassifier interface {
	Classify(a Anchor) LinkClass
}

// MarkerClassifier classifies by marker text: anchors whose text contains
// Marker are downloads, anchors inside album-art containers are cover
// art.
//
// This matches the layout where every detail page renders its download
// links as "Click here to download as MP3".
type MarkerClassifier struct {
	// Marker is the literal text flagging a download link.
	Marker string
}

func (c MarkerClassifier) Classify(a Anchor) LinkClass {
	if a.InArtContainer {
		return LinkCoverArt
	}
	if c.Marker != "" && strings.Contains(a.Text, c.Marker) {
		return LinkDownload
	}
	return LinkOther
}

// MediaHostClassifier classifies by target host: anchors onto the
// media-asset domain are downloads, unless their extension is an image
// format, in which case they are cover art.
//
// This matches the layout where both audio files and artwork are served
// from a dedicated asset host rather than flagged in the markup.
type MediaHostClassifier struct {
	// Host is the media-asset domain; matching is by suffix, so "vgmsite.com"
	// also covers its subdomains.
	Host string
}

func (c MediaHostClassifier) Classify(a Anchor) LinkClass {
	if c.Host == "" || a.Host == "" {
		return LinkOther
	}
	if a.Host != c.Host && !strings.HasSuffix(a.Host, "."+c.Host) {
		return LinkOther
	}
	if isImageExt(linkExt(a.Href)) {
		return LinkCoverArt
	}
	return LinkDownload
}

// DefaultMediaHost is the catalog's media-asset domain.
const DefaultMediaHost = "vgmsite.com"

// DefaultClassifier returns the classifier for the current site layout:
// download links flagged by a "Click here" marker span, cover art inside
// albumImage containers.
func DefaultClassifier() LinkClassifier {
	return MarkerClassifier{Marker: "Click here"}
}

// FormatUnavailableError reports that none of a track's download links
// matched the requested format.
type FormatUnavailableError struct {
	// Format is the requested format, as given.
	Format string

	// Track is the track's display name.
	Track string
}

func (e *FormatUnavailableError) Error() string {
	return fmt.Sprintf("%s format not found for track %q", strings.ToUpper(e.Format), e.Track)
}

// SelectFormatLink picks the first link whose file extension matches the
// requested format, comparing case-insensitively against the substring
// after the last '.' in the URL path.
//
// Returns *FormatUnavailableError carrying the format and track name when
// nothing matches.
func SelectFormatLink(links []string, format, trackName string) (string, error) {
	want := strings.ToLower(format)
	for _, link := range links {
		if linkExt(link) == want {
			return link, nil
		}
	}
	return "", &FormatUnavailableError{Format: format, Track: trackName}
}

// linkExt returns the lowercased extension of the URL's path, without the
// dot.
func linkExt(link string) string {
	p := link
	if u, err := url.Parse(link); err == nil {
		p = u.Path
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

var imageExts = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
	"webp": {},
}

func isImageExt(ext string) bool {
	_, ok := imageExts[ext]
	return ok
}

// collectAnchors reduces every anchor under root to an Anchor, resolving
// hrefs against base. Anchors without an href are skipped.
func collectAnchors(root *goquery.Selection, base *url.URL) []Anchor {
	var anchors []Anchor
	root.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}

		abs := resolveRef(base, href)
		host := ""
		if u, err := url.Parse(abs); err == nil {
			host = u.Hostname()
		}

		anchors = append(anchors, Anchor{
			Href:           abs,
			Text:           strings.TrimSpace(a.Text()),
			Host:           host,
			InArtContainer: a.ParentsFiltered("div.albumImage").Length() > 0,
		})
	})
	return anchors
}
