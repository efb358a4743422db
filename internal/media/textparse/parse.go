package textparse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrZeroDenominator is returned for frame rates such as "0/0".
var ErrZeroDenominator = errors.New("frame rate denominator is zero")

// Field is a single key=value line inside a stream block.
type Field struct {
	Key   string
	Value string
}

// Block is one [STREAM] section in encounter order.
type Block []Field

// Lookup returns the first value recorded for key.
func (b Block) Lookup(key string) (string, bool) {
	for _, f := range b {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Rational is a frame rate as reported by ffprobe (r_frame_rate).
type Rational struct {
	Num int
	Den int
}

// IntegralRate reduces the ratio by integer division. Fractional rates such as
// 30000/1001 truncate to 29.
func (r Rational) IntegralRate() (int, error) {
	if r.Den == 0 {
		return 0, ErrZeroDenominator
	}
	return r.Num / r.Den, nil
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// StreamTiming carries the fields needed to predict a stream's frame count.
type StreamTiming struct {
	Rate     Rational
	Duration float64
}

// StreamRecord describes one video stream and whether it is flagged as an
// embedded cover picture.
type StreamRecord struct {
	Index           int
	AttachedPicture bool
}

// MaxFrame scans every progress record and returns the highest frame count
// seen. The second result is false when no progress record was found.
func (p *Patterns) MaxFrame(text string) (int, bool) {
	frames := -1
	for _, match := range p.progress.FindAllStringSubmatch(normalize(text), -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if n > frames {
			frames = n
		}
	}
	return frames, frames >= 0
}

// Blocks splits inspection output into its [STREAM] sections.
func (p *Patterns) Blocks(text string) []Block {
	matches := p.block.FindAllStringSubmatch(normalize(text), -1)
	blocks := make([]Block, 0, len(matches))
	for _, match := range matches {
		var block Block
		for _, kv := range p.field.FindAllStringSubmatch(match[1], -1) {
			block = append(block, Field{
				Key:   strings.TrimSpace(kv[1]),
				Value: strings.TrimSpace(kv[2]),
			})
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// FirstTiming returns the timing of the first block that carries both an
// integer r_frame_rate ratio and a decimal duration. Blocks where either field
// is missing or reported as N/A are skipped.
func (p *Patterns) FirstTiming(text string) (StreamTiming, bool) {
	for _, block := range p.Blocks(text) {
		rate, ok := block.Lookup("r_frame_rate")
		if !ok {
			continue
		}
		duration, ok := block.Lookup("duration")
		if !ok {
			continue
		}
		parts := p.rational.FindStringSubmatch(rate)
		if parts == nil || !p.decimal.MatchString(duration) {
			continue
		}
		num, err := strconv.Atoi(parts[1])
		if err != nil {
			return StreamTiming{}, false
		}
		den, err := strconv.Atoi(parts[2])
		if err != nil {
			return StreamTiming{}, false
		}
		seconds, err := strconv.ParseFloat(duration, 64)
		if err != nil {
			return StreamTiming{}, false
		}
		return StreamTiming{Rate: Rational{Num: num, Den: den}, Duration: seconds}, true
	}
	return StreamTiming{}, false
}

// Tags collects container-level TAG:key=value lines. Later duplicates win.
func (p *Patterns) Tags(text string) map[string]string {
	tags := make(map[string]string)
	for _, match := range p.tag.FindAllStringSubmatch(normalize(text), -1) {
		tags[match[1]] = match[2]
	}
	return tags
}

// Dispositions reads index and DISPOSITION:attached_pic pairs from each block.
// Blocks lacking either field are ignored; a malformed index fails the parse.
func (p *Patterns) Dispositions(text string) ([]StreamRecord, error) {
	var records []StreamRecord
	for _, block := range p.Blocks(text) {
		rawIndex, ok := block.Lookup("index")
		if !ok {
			continue
		}
		flag, ok := block.Lookup("DISPOSITION:attached_pic")
		if !ok {
			continue
		}
		index, err := strconv.Atoi(rawIndex)
		if err != nil || index < 0 {
			return nil, fmt.Errorf("parse stream index %q: %w", rawIndex, errInvalidIndex(err))
		}
		records = append(records, StreamRecord{Index: index, AttachedPicture: flag == "1"})
	}
	return records, nil
}

func errInvalidIndex(err error) error {
	if err != nil {
		return err
	}
	return errors.New("negative index")
}
