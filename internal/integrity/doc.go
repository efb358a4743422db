// Package integrity checks that a media file decodes to the number of frames
// its container advertises.
//
// The expected count is derived from the first selected stream's r_frame_rate
// (truncated to an integer) and duration as reported by ffprobe. The actual
// count is the highest progress frame reported while ffmpeg decodes the file
// into a null sink. A Policy decides how far the two may drift apart.
//
// Every failure on this path (missing file, tool errors, unparseable output)
// is a failed verification, never an error.
package integrity
