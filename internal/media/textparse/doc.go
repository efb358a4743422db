// Package textparse extracts structured facts from the plain-text output of
// ffmpeg and ffprobe.
//
// The inspection tool is driven with its default writer, which prints
// repeating [STREAM] ... [/STREAM] blocks of key=value lines plus TAG:key=value
// lines for container metadata. The transform tool reports progress records of
// the form "frame=<N> fps=<F> ...", separated by carriage returns while running
// and a newline after the final report.
//
// Key types:
//   - Patterns: the immutable compiled pattern set; build once with Compile
//     (or share Default) and pass it to every parse call
//   - Block: one [STREAM] block with its fields in encounter order
//   - StreamTiming / Rational: frame-rate and duration for integrity checks
//   - StreamRecord: a video stream index and its attached_pic disposition
package textparse
