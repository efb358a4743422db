// Package config loads, normalizes, and validates mediatag configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as MEDIATAG_FFMPEG and
// MEDIATAG_FFPROBE. The Config type centralizes every knob the CLI and the
// batch runner need: tool binaries, the integrity policy, preservation
// defaults, batch discovery, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical verify modes, and clear validation errors.
package config
