// Package audio provides audio file manipulation services including
// ID3 tag writing and playlist generation.
//
// # ID3 Tagging
//
// Use the Tagger to write ID3 tags to downloaded MP3 files:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(filePath, track, album, artworkBytes)
//
// Tags are sourced from the extracted track table: "song name" becomes
// the title, the album's display name the album tag, "#" the track
// number. Cover art bytes, when available, are embedded as the front
// cover picture.
//
// # Playlist Generation
//
// Generate playlists over the files of one download session:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.Create(album.Name, entries)
//	os.WriteFile(playlistPath, []byte(content), 0644)
//
// Supported formats: M3U (with optional extended info) and PLS.
package audio
