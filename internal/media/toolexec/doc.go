// Package toolexec launches ffmpeg and ffprobe and hands back their combined
// text output.
//
// One Run call is one synchronous process invocation. The executor reports the
// exit code but never interprets it; callers decide what the captured text
// means. Launch and read failures wrap ErrLaunch, and runs cut short by the
// caller's context or the configured timeout wrap ErrInterrupted.
//
// Prefer the Executor interface in consumers so tests can substitute canned
// output without spawning processes.
package toolexec
