package coverart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNotImage reports that a file's content is not a recognised image format.
var ErrNotImage = errors.New("not an image")

// SniffImage detects the MIME type of path from its content and fails with
// ErrNotImage unless it is an image/* type.
func SniffImage(path string) (string, error) {
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("sniff %s: %w", path, err)
	}
	kind := detected.String()
	if !strings.HasPrefix(kind, "image/") {
		return kind, fmt.Errorf("%s is %s: %w", path, kind, ErrNotImage)
	}
	return kind, nil
}
