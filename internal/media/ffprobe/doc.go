// Package ffprobe builds inspection-tool argument lists and decodes its JSON
// summary output.
//
// The text-mode queries (frame rate and duration, container tags, stream
// dispositions) are produced here as argument slices and parsed by
// textparse; Inspect runs the JSON writer for the human-facing stream summary.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (duration, size, bitrate, tags)
package ffprobe
