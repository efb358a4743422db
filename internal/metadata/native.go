package metadata

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"golang.org/x/text/cases"
)

// ErrNoNativeTags reports that the file carries no tag block the in-process
// reader recognizes.
var ErrNoNativeTags = errors.New("no native tags found")

var keyFolder = cases.Fold()

// ReadNative parses ID3, MP4, FLAC, and Ogg tags directly from path.
// Well-known fields use ffmpeg's metadata key names; remaining textual frames
// are included under case-folded keys.
func ReadNative(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoNativeTags)
		}
		return nil, fmt.Errorf("read tags %s: %w", path, err)
	}

	out := make(map[string]string)
	put := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			out[key] = value
		}
	}
	put("title", meta.Title())
	put("artist", meta.Artist())
	put("album", meta.Album())
	put("album_artist", meta.AlbumArtist())
	put("composer", meta.Composer())
	put("genre", meta.Genre())
	put("comment", meta.Comment())
	put("lyrics", meta.Lyrics())
	if year := meta.Year(); year > 0 {
		put("date", strconv.Itoa(year))
	}
	if track, total := meta.Track(); track > 0 {
		put("track", formatPosition(track, total))
	}
	if disc, total := meta.Disc(); disc > 0 {
		put("disc", formatPosition(disc, total))
	}
	if pic := meta.Picture(); pic != nil {
		put("cover", fmt.Sprintf("%s (%d bytes)", pic.MIMEType, len(pic.Data)))
	}

	for key, raw := range meta.Raw() {
		value, ok := raw.(string)
		if !ok {
			continue
		}
		folded := keyFolder.String(strings.TrimSpace(key))
		if folded == "" {
			continue
		}
		if _, exists := out[folded]; !exists {
			put(folded, value)
		}
	}
	return out, nil
}

func formatPosition(n, total int) string {
	if total > 0 {
		return fmt.Sprintf("%d/%d", n, total)
	}
	return strconv.Itoa(n)
}
