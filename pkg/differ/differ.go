// Package differ provides line-level utilities for unified git diffs.
package differ

import (
	"fmt"
	"strings"
)

// TruncationSentinel is appended to a diff cut short by Truncate.
const TruncationSentinel = "... (diff truncated due to size)"

// Stats holds counts of changed lines.
type Stats struct {
	Additions int
	Deletions int
}

// Changed returns the total number of added and removed lines.
func (s Stats) Changed() int {
	return s.Additions + s.Deletions
}

// Summary returns a human-readable summary of the stats.
func (s Stats) Summary() string {
	if s.Changed() == 0 {
		return "No changes detected"
	}
	return fmt.Sprintf("%d additions, %d deletions", s.Additions, s.Deletions)
}

// SplitLines splits diff output into lines, dropping the final newline.
func SplitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// Truncate keeps at most max lines. When lines are dropped the result holds
// exactly max original lines followed by one TruncationSentinel.
func Truncate(lines []string, max int) ([]string, bool) {
	if max < 0 {
		max = 0
	}
	if len(lines) <= max {
		out := make([]string, len(lines))
		copy(out, lines)
		return out, false
	}
	out := make([]string, 0, max+1)
	out = append(out, lines[:max]...)
	out = append(out, TruncationSentinel)
	return out, true
}

// Count tallies added and removed lines. ---/+++ lines are file headers only
// between a "diff" line and the first @@ hunk; inside a hunk they are content.
func Count(lines []string) Stats {
	var s Stats
	inHunk := false
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "diff "):
			inHunk = false
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case !inHunk && (strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---")):
		case strings.HasPrefix(line, "+"):
			s.Additions++
		case strings.HasPrefix(line, "-"):
			s.Deletions++
		}
	}
	return s
}
