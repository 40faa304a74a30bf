package audio

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/handiism/khinsider-downloader/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
//
// Each tag field can be configured independently to determine whether
// it should be modified, cleared, or left unchanged.
type TagEditAction int

const (
	// TagEmpty clears the tag value (sets to empty string).
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from the track table.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags:  true,
//	    Album:       TagModify,      // album name from the page
//	    TrackTitle:  TagModify,      // "song name" attribute
//	    TrackNumber: TagModify,      // "#" attribute
//	    Comments:    TagEmpty,       // clear any existing comments
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no string tags are
	// modified (cover art embedding is controlled separately).
	ModifyTags bool

	// Album controls the TALB (Album title) frame.
	Album TagEditAction

	// TrackTitle controls the TIT2 (Title) frame.
	TrackTitle TagEditAction

	// TrackNumber controls the TRCK (Track number) frame.
	TrackNumber TagEditAction

	// Comments controls the COMM (Comments) frame.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tagging behavior: set album,
// title and track number from the extracted records, clear comments.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		Album:       TagModify,
		TrackTitle:  TagModify,
		TrackNumber: TagModify,
		Comments:    TagEmpty,
	}
}

// Tagger writes ID3v2 tags to downloaded MP3 files.
//
// The catalog's track table is the only metadata source: the "song name"
// attribute becomes the title, the album's display name the album tag
// and the "#" attribute the track number. Cover art bytes, when
// provided, are embedded as the front cover picture.
type Tagger struct {
	cfg *TagConfig
}

// NewTagger creates a Tagger with the given configuration.
func NewTagger(cfg *TagConfig) *Tagger {
	if cfg == nil {
		cfg = DefaultTagConfig()
	}
	return &Tagger{cfg: cfg}
}

// SaveTags writes tags to the MP3 file at filePath.
//
// artwork may be nil; when present it is embedded as the front cover.
// Files in formats other than MP3 should not be passed here.
func (t *Tagger) SaveTags(filePath string, track *model.Track, album *model.Album, artwork []byte) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tags of %s: %w", filePath, err)
	}
	defer tag.Close()

	if t.cfg.ModifyTags {
		applyText(t.cfg.TrackTitle, track.Name(), tag.SetTitle)
		applyText(t.cfg.Album, album.Name, tag.SetAlbum)
		applyText(t.cfg.TrackNumber, trackNumber(track), func(v string) {
			tag.AddTextFrame(tag.CommonID("Track number/Position in set"), tag.DefaultEncoding(), v)
		})

		if t.cfg.Comments == TagEmpty {
			tag.DeleteFrames(tag.CommonID("Comments"))
		}
	}

	if artwork != nil {
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    tag.DefaultEncoding(),
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Picture:     artwork,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags of %s: %w", filePath, err)
	}
	return nil
}

// applyText applies one edit action to a text frame.
func applyText(action TagEditAction, value string, set func(string)) {
	switch action {
	case TagModify:
		if value != "" {
			set(value)
		}
	case TagEmpty:
		set("")
	}
}

// trackNumber normalizes the "#" attribute ("7." or "7") to a plain
// number string.
func trackNumber(track *model.Track) string {
	num, _ := track.Get("#")
	return strings.TrimSuffix(strings.TrimSpace(num), ".")
}
