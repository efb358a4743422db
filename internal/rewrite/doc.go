// Package rewrite produces a new media file from an input with its cover art
// and container metadata changed, copying every payload stream untouched.
//
// Engine.Apply is the only operation in mediatag that modifies the filesystem.
// It validates the request before starting any tool, writes to a temporary
// sibling of the output, and renames it into place only after ffmpeg exits
// cleanly. Concurrent applies to the same output serialize on a file lock.
package rewrite
