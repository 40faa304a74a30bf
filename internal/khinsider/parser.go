package khinsider

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/handiism/khinsider-downloader/internal/model"
)

// AlbumURLPrefix is the required prefix for album page URLs. Anything
// else is rejected before any network activity.
const AlbumURLPrefix = "https://downloads.khinsider.com/game-soundtracks/album/"

// ErrContentNotFound is returned when the page's primary content region
// is missing.
//
// This signals that either the URL does not point at an album page or the
// site layout changed.
var ErrContentNotFound = errors.New("album content not found in page")

// ErrTrackTableNotFound is returned when the content region exists but
// holds no track table.
var ErrTrackTableNotFound = errors.New("track table not found in album content")

// ErrNoSongNameColumn is returned when the track table's header row lacks
// the "Song Name" column the extractor aligns everything against.
var ErrNoSongNameColumn = errors.New(`track table has no "Song Name" column`)

// ErrRowLinkMissing is returned when a data row carries no anchor. Every
// data row must link to a track detail page; a row without one means the
// markup no longer matches assumptions.
var ErrRowLinkMissing = errors.New("track row has no detail page link")

// InvalidURLError reports an album URL outside the supported catalog.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("%q is not a valid album URL (want prefix %s)", e.URL, AlbumURLPrefix)
}

// UnknownColumnError reports a header label the extractor does not
// recognize. Rejecting unknown labels surfaces layout drift at parse time
// instead of producing garbage records.
type UnknownColumnError struct {
	Label string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown track table column %q", e.Label)
}

// ValidateAlbumURL checks that rawURL points into the supported catalog.
// Returns *InvalidURLError otherwise.
func ValidateAlbumURL(rawURL string) error {
	if !strings.HasPrefix(rawURL, AlbumURLPrefix) {
		return &InvalidURLError{URL: rawURL}
	}
	return nil
}

// Parser extracts structured album data from catalog HTML pages.
//
// The catalog renders one album per page: a content region (div
// "pageContent") holding the album name, the cover art and a track table
// (table "songlist") bounded by a header row and a totals footer row.
// Parser walks that structure and produces a model.Album.
//
// Example:
//
//	parser := khinsider.NewParser(khinsider.DefaultClassifier(), -1)
//
//	html, _ := client.GetString(ctx, albumURL)
//	album, err := parser.ParseAlbumPage(albumURL, html)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%s: %d tracks\n", album.Name, len(album.Tracks))
type Parser struct {
	classifier      LinkClassifier
	trailingColumns int
}

// DefaultTrailingColumns is the number of non-format columns after the
// last format header in the current table layout.
const DefaultTrailingColumns = 2

// NewParser creates a Parser.
//
// classifier decides which anchors are downloads or cover art; nil
// selects DefaultClassifier. trailingColumns is the number of non-format
// columns after the last format header (layout-dependent, zero is
// valid); negative values select DefaultTrailingColumns.
func NewParser(classifier LinkClassifier, trailingColumns int) *Parser {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	if trailingColumns < 0 {
		trailingColumns = DefaultTrailingColumns
	}
	return &Parser{
		classifier:      classifier,
		trailingColumns: trailingColumns,
	}
}

// knownLabels are the non-format column headers the extractor accepts,
// lowercased.
var knownLabels = map[string]struct{}{
	"#":         {},
	"cd":        {},
	"song name": {},
	"duration":  {},
	"time":      {},
	"size":      {},
}

// formatLabelRE matches format column headers such as "MP3", "FLAC" or
// "M4A": short alphanumeric tokens.
var formatLabelRE = regexp.MustCompile(`^[A-Za-z0-9]{1,6}$`)

func validLabel(label string) bool {
	if _, ok := knownLabels[strings.ToLower(label)]; ok {
		return true
	}
	return formatLabelRE.MatchString(label)
}

// ParseAlbumPage extracts the album from one page's HTML.
//
// pageURL is the URL the HTML came from; row links are resolved against
// it. The returned album holds one Track per data row, in row order, plus
// the cover art URLs the configured classifier finds.
//
// A table with header and footer but zero data rows yields an empty track
// list, not an error. A data row without an anchor fails the whole parse
// with ErrRowLinkMissing, since every later step dereferences the link.
func (p *Parser) ParseAlbumPage(pageURL, htmlContent string) (*model.Album, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse album page: %w", err)
	}

	content := doc.Find("div#pageContent").First()
	if content.Length() == 0 {
		return nil, ErrContentNotFound
	}

	table := content.Find("table#songlist").First()
	if table.Length() == 0 {
		return nil, ErrTrackTableNotFound
	}

	headers, err := p.parseHeaders(table)
	if err != nil {
		return nil, err
	}

	footers := cellTexts(table.Find("tr#songlist_footer").First().Find("th"))

	tracks, err := p.parseRows(table, headers, base)
	if err != nil {
		return nil, err
	}

	return &model.Album{
		URL:             pageURL,
		Name:            strings.TrimSpace(content.Find("h2").First().Text()),
		Headers:         headers,
		Footers:         footers,
		TrailingColumns: p.trailingColumns,
		Tracks:          tracks,
		Covers:          p.extractCovers(content, base),
	}, nil
}

// parseHeaders reads the header row and inserts the synthetic "Duration"
// entry immediately after "Song Name".
//
// Some layouts render the duration as plain text next to the track name
// cell instead of under a dedicated header, so the header list must be
// realigned with the actual cell layout of each data row.
func (p *Parser) parseHeaders(table *goquery.Selection) ([]string, error) {
	raw := cellTexts(table.Find("tr#songlist_header").First().Find("th"))

	songName := -1
	for i, h := range raw {
		if h == "Song Name" {
			songName = i
			break
		}
	}
	if songName < 0 {
		return nil, ErrNoSongNameColumn
	}

	for _, h := range raw {
		if h != "" && !validLabel(h) {
			return nil, &UnknownColumnError{Label: h}
		}
	}

	headers := make([]string, 0, len(raw)+1)
	headers = append(headers, raw[:songName+1]...)
	headers = append(headers, "Duration")
	headers = append(headers, raw[songName+1:]...)
	return headers, nil
}

// parseRows builds one Track per data row between the header and footer
// rows, in row order.
func (p *Parser) parseRows(table *goquery.Selection, headers []string, base *url.URL) ([]*model.Track, error) {
	var tracks []*model.Track
	var rowErr error

	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if id, _ := row.Attr("id"); id == "songlist_header" || id == "songlist_footer" {
			return true
		}

		href, ok := row.Find("a").First().Attr("href")
		if !ok {
			rowErr = fmt.Errorf("row %d: %w", len(tracks)+1, ErrRowLinkMissing)
			return false
		}

		cells := row.Find("td")
		var attrs []model.Attribute
		for i, header := range headers {
			if header == "" {
				continue // decorative column
			}
			value := ""
			if i < cells.Length() {
				value = strings.TrimSpace(cells.Eq(i).Text())
			}
			attrs = append(attrs, model.Attribute{
				Key:   strings.ToLower(header),
				Value: value,
			})
		}

		tracks = append(tracks, model.NewTrack(resolveRef(base, href), attrs))
		return true
	})

	if rowErr != nil {
		return nil, rowErr
	}
	return tracks, nil
}

// extractCovers returns the cover art URLs the classifier flags within
// the content region.
func (p *Parser) extractCovers(content *goquery.Selection, base *url.URL) []model.Cover {
	var covers []model.Cover
	for _, anchor := range collectAnchors(content, base) {
		if p.classifier.Classify(anchor) == LinkCoverArt {
			covers = append(covers, model.Cover{URL: anchor.Href})
		}
	}
	return covers
}

// ExtractDownloadLinks returns the absolute URLs of the anchors the
// classifier flags as direct download links on a track detail page.
func (p *Parser) ExtractDownloadLinks(pageURL, htmlContent string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse detail page: %w", err)
	}

	var links []string
	for _, anchor := range collectAnchors(doc.Selection, base) {
		if p.classifier.Classify(anchor) == LinkDownload {
			links = append(links, anchor.Href)
		}
	}
	return links, nil
}

// cellTexts returns the trimmed texts of a cell selection, in order.
func cellTexts(cells *goquery.Selection) []string {
	texts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(cell.Text()))
	})
	return texts
}

// resolveRef resolves href against base. An unparseable href is returned
// unchanged; the transfer layer will surface the failure.
func resolveRef(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
