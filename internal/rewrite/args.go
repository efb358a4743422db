package rewrite

import (
	"strconv"

	"mediatag/internal/metadata"
)

// CoverAction selects the cover branch of the argument list.
type CoverAction int

const (
	CoverPreserve CoverAction = iota
	CoverReplace
	CoverRemove
)

func (c CoverAction) String() string {
	switch c {
	case CoverReplace:
		return "replace"
	case CoverRemove:
		return "remove"
	default:
		return "preserve"
	}
}

// Plan is everything needed to render the ffmpeg argument list.
type Plan struct {
	Input  string
	Output string
	Cover  CoverAction
	// CoverPath is the replacement image for CoverReplace.
	CoverPath string
	// RemoveStreams are the attached-picture indices dropped by CoverRemove.
	RemoveStreams []int
	StripMetadata bool
	Metadata      map[string]string
}

// Args accumulates ffmpeg arguments. ffmpeg is sensitive to argument order,
// so Build appends the groups in one fixed sequence: input, cover mapping,
// overwrite, stream copy, metadata, output.
type Args struct {
	list []string
}

func (a *Args) add(values ...string) *Args {
	a.list = append(a.list, values...)
	return a
}

func (a *Args) input(path string) *Args {
	return a.add("-i", path)
}

func (a *Args) cover(p Plan) *Args {
	switch p.Cover {
	case CoverReplace:
		// The new picture is mapped first so it becomes stream 0 and
		// carries the attached_pic disposition.
		return a.add("-i", p.CoverPath, "-map", "1", "-map", "0", "-disposition:0", "attached_pic")
	case CoverRemove:
		a.add("-map", "0")
		for _, index := range p.RemoveStreams {
			a.add("-map", "-0:"+strconv.Itoa(index))
		}
		return a
	default:
		return a.add("-map", "0")
	}
}

func (a *Args) overwrite() *Args {
	return a.add("-y")
}

func (a *Args) streamCopy() *Args {
	return a.add("-c", "copy")
}

// metadata strips before it adds; the reverse would erase the new tags.
func (a *Args) metadata(strip bool, tags map[string]string) *Args {
	if strip {
		a.add("-map_metadata", "-1")
	}
	for _, key := range metadata.SortedKeys(tags) {
		a.add("-metadata", key+"="+tags[key])
	}
	return a
}

func (a *Args) output(path string) *Args {
	return a.add(path)
}

// Strings returns a copy of the accumulated arguments.
func (a *Args) Strings() []string {
	return append([]string(nil), a.list...)
}

// Build renders p into an ffmpeg argument list.
func Build(p Plan) []string {
	var a Args
	return a.input(p.Input).
		cover(p).
		overwrite().
		streamCopy().
		metadata(p.StripMetadata, p.Metadata).
		output(p.Output).
		Strings()
}
