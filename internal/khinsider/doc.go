// Package khinsider turns catalog HTML pages into structured album data.
//
// The package handles three concerns:
//
//  1. Extracting the track table of an album page into records
//  2. Classifying anchors (download link, cover art, other)
//  3. Resolving a track's format-specific download link
//
// # Album Page Extraction
//
// Use the Parser to extract an album from its page HTML:
//
//	parser := khinsider.NewParser(khinsider.DefaultClassifier(), -1)
//	album, err := parser.ParseAlbumPage(albumURL, htmlContent)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s (%d tracks)\n", album.Name, len(album.Tracks))
//
// The extractor locates the content region and the track table by fixed
// identifiers and fails with ErrContentNotFound or ErrTrackTableNotFound
// when they are absent, which usually means the site layout changed.
//
// # Link Classification
//
// The markup flagging download links and cover art differs between site
// layout revisions. Each revision is covered by one LinkClassifier
// implementation (MarkerClassifier, MediaHostClassifier), chosen when the
// Parser is built.
//
// # Download Link Resolution
//
// Track files live behind a per-track detail page. Fetch it, extract its
// download links, then pick the requested format:
//
//	links, _ := parser.ExtractDownloadLinks(track.PageURL, detailHTML)
//	fileURL, err := khinsider.SelectFormatLink(links, "flac", track.Name())
package khinsider
