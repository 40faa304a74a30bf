// Package model defines the core data structures used throughout
// the khinsider-downloader application.
//
// # Album
//
// Album represents one extracted catalog page: the album name, the track
// table's header and footer cell texts, the track records and the cover
// art URLs:
//
//	fmt.Println(album.Name)
//	fmt.Println(album.Formats())     // formats offered, e.g. ["mp3", "flac"]
//	fmt.Println(album.TotalDuration())
//
// # Track
//
// Track is one row of the track table. Its attributes are an ordered list
// keyed by the lowercased column headers discovered at parse time, so the
// attribute set varies per album:
//
//	name, _ := track.Get("song name")
//	size, _ := track.Get("mp3")
//	dur, ok := track.Duration()
//
// # Cover
//
// Cover is a single absolute URL to an album art image.
//
// All types here are plain values constructed once per extraction and
// never mutated afterwards; nothing is persisted between runs.
package model
