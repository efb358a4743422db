package textparse

import (
	"regexp"
	"strings"
	"sync"
)

// Patterns is the compiled pattern set used by every parser in this package.
// A Patterns value is never mutated after Compile returns, so one instance can
// be shared by concurrent callers.
type Patterns struct {
	progress *regexp.Regexp
	block    *regexp.Regexp
	field    *regexp.Regexp
	tag      *regexp.Regexp
	rational *regexp.Regexp
	decimal  *regexp.Regexp
}

// Compile builds a fresh pattern set.
func Compile() *Patterns {
	return &Patterns{
		progress: regexp.MustCompile(`(?m)^frame=\s*(\d+)\s+fps=.*$`),
		block:    regexp.MustCompile(`(?ms)^\[STREAM\][ \t]*$(.*?)^\[/STREAM\][ \t]*$`),
		field:    regexp.MustCompile(`(?m)^([^=\n\[]+)=(.*)$`),
		tag:      regexp.MustCompile(`(?m)^TAG:(.+?)=(.+)$`),
		rational: regexp.MustCompile(`^(\d+)/(\d+)$`),
		decimal:  regexp.MustCompile(`^\d+\.\d+$`),
	}
}

// Default returns the process-wide pattern set, compiled on first use.
var Default = sync.OnceValue(Compile)

// normalize folds CRLF and bare CR record separators into newlines so each
// progress report and each key=value pair sits on its own line.
func normalize(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
