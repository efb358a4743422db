package rewrite

import "errors"

// MaxCoverBytes is the largest replacement cover accepted. Larger embedded
// pictures produce containers some players refuse to open.
const MaxCoverBytes = 10_000_000

var (
	// ErrInputNotFound reports a missing input file or one that is a directory.
	ErrInputNotFound = errors.New("input not found")
	// ErrOutputUnavailable reports an output path that is empty, a directory,
	// or whose parent cannot be created.
	ErrOutputUnavailable = errors.New("output path unavailable")
	// ErrSamePath reports an output that resolves to the input file.
	ErrSamePath = errors.New("input and output are the same file")
	// ErrCoverTooLarge reports a replacement cover over MaxCoverBytes.
	ErrCoverTooLarge = errors.New("cover art too large")
	// ErrCoverNotImage reports a replacement cover that does not sniff as an image.
	ErrCoverNotImage = errors.New("cover art is not an image")
	// ErrTransform wraps failures of the ffmpeg run itself.
	ErrTransform = errors.New("transform failed")
)
