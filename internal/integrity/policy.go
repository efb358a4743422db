package integrity

import (
	"fmt"
	"strings"

	"mediatag/internal/config"
)

// Mode selects the acceptance rule applied to the frame difference.
type Mode int

const (
	// Disabled accepts every existing file without running any tool.
	Disabled Mode = iota
	// RangeSymmetric accepts |actual-expected| <= discrepancy.
	RangeSymmetric
	// RangeExceedOnly accepts 0 <= actual-expected <= discrepancy.
	RangeExceedOnly
	// Exact accepts only actual == expected.
	Exact
)

func (m Mode) String() string {
	switch m {
	case Disabled:
		return "disabled"
	case RangeSymmetric:
		return "range"
	case RangeExceedOnly:
		return "exceed"
	case Exact:
		return "exact"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts the canonical names and the numeric levels 0-3.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "0", "off", "disabled":
		return Disabled, nil
	case "1", "range":
		return RangeSymmetric, nil
	case "2", "exceed":
		return RangeExceedOnly, nil
	case "3", "exact":
		return Exact, nil
	default:
		return Disabled, fmt.Errorf("unknown verify mode %q", value)
	}
}

// Policy pairs a Mode with the allowed discrepancy in frames.
type Policy struct {
	Mode        Mode
	Discrepancy int
}

// PolicyFromConfig converts the [verify] section into a Policy.
func PolicyFromConfig(cfg config.Verify) (Policy, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return Policy{}, err
	}
	if cfg.Discrepancy < 0 {
		return Policy{}, fmt.Errorf("verify discrepancy must be >= 0, got %d", cfg.Discrepancy)
	}
	return Policy{Mode: mode, Discrepancy: cfg.Discrepancy}, nil
}

// Accepts applies the policy to a frame difference (actual minus expected).
func (p Policy) Accepts(diff int) bool {
	switch p.Mode {
	case Disabled:
		return true
	case RangeSymmetric:
		if diff < 0 {
			diff = -diff
		}
		return diff <= p.Discrepancy
	case RangeExceedOnly:
		return diff >= 0 && diff <= p.Discrepancy
	case Exact:
		return diff == 0
	default:
		return false
	}
}
