// Package ioutils provides file system and image processing utilities.
//
// # File Names
//
// Downloaded files are named from the final path segment of their URL,
// percent-decoded:
//
//	name, _ := ioutils.FileNameFromURL("https://vgmsite.com/x/01%20Opening.mp3")
//	// "01 Opening.mp3"
//
// SanitizeFileName strips characters that are invalid on common file
// systems:
//
//	safe := ioutils.SanitizeFileName("Song: Part 1/2") // "Song_ Part 1_2"
//
// # Cover Art
//
// PrepareCoverArt scales downloaded artwork to fit a square bound and
// re-encodes it as JPEG for portable ID3 embedding:
//
//	art, err := ioutils.PrepareCoverArt(data, 1000, true)
package ioutils
