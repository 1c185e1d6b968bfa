package animator

import (
	"fmt"
	"strings"
)

// LoopMode selects what an action does when its time reaches the end of its clip.
type LoopMode int

const (
	// LoopRepeat wraps the time back to the start and counts a loop.
	LoopRepeat LoopMode = iota

	// LoopOnceClamp stops at the last frame and holds that pose.
	LoopOnceClamp

	// LoopOnceReset stops the action and returns its nodes to the rest pose.
	LoopOnceReset
)

// String implements fmt.Stringer.
func (m LoopMode) String() string {
	switch m {
	case LoopRepeat:
		return "repeat"
	case LoopOnceClamp:
		return "once-clamp"
	case LoopOnceReset:
		return "once-reset"
	default:
		return fmt.Sprintf("LoopMode(%d)", int(m))
	}
}

// ParseLoopMode parses the names produced by LoopMode.String. Matching is case-insensitive
// and underscores are accepted in place of dashes.
//
// Parameters:
//   - s: the loop mode name
//
// Returns:
//   - LoopMode: the parsed mode
//   - error: error if s names no mode
func ParseLoopMode(s string) (LoopMode, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-") {
	case "repeat":
		return LoopRepeat, nil
	case "once-clamp", "once", "clamp":
		return LoopOnceClamp, nil
	case "once-reset", "reset":
		return LoopOnceReset, nil
	default:
		return 0, fmt.Errorf("unknown loop mode %q", s)
	}
}
