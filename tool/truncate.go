package tool

import (
	"fmt"
	"strings"
)

// TruncationMode specifies how oversized output is cut.
type TruncationMode string

const (
	TruncateHeadTail TruncationMode = "head_tail"
	TruncateTail     TruncationMode = "tail"
)

// DefaultMaxResultChars bounds how much of a tool result is fed back to the
// model. The full output is preserved in the Result itself.
const DefaultMaxResultChars = 20000

// TruncateOutput applies character-based truncation to output.
func TruncateOutput(output string, maxChars int, mode TruncationMode) string {
	if maxChars <= 0 || len(output) <= maxChars {
		return output
	}

	removed := len(output) - maxChars
	switch mode {
	case TruncateTail:
		return fmt.Sprintf("[truncated: first %d characters removed]\n\n", removed) +
			output[len(output)-maxChars:]
	default:
		half := maxChars / 2
		return output[:half] +
			fmt.Sprintf("\n\n[truncated: %d characters removed from the middle; re-run the tool with narrower parameters to see more]\n\n", removed) +
			output[len(output)-half:]
	}
}

// TruncateLines applies line-based truncation using a head/tail split.
func TruncateLines(output string, maxLines int) string {
	lines := strings.Split(output, "\n")
	if maxLines <= 0 || len(lines) <= maxLines {
		return output
	}

	headCount := maxLines / 2
	tailCount := maxLines - headCount
	omitted := len(lines) - headCount - tailCount

	return strings.Join(lines[:headCount], "\n") +
		fmt.Sprintf("\n[... %d lines omitted ...]\n", omitted) +
		strings.Join(lines[len(lines)-tailCount:], "\n")
}

// FormatResult renders a Result as the text of a tool message. Errors and
// timeouts surface their message; success output is truncated to keep the
// prompt bounded.
func FormatResult(r Result, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxResultChars
	}
	switch r.Status {
	case StatusTimeout:
		return "Error: " + r.ErrorMessage
	case StatusError:
		return "Error: " + r.ErrorMessage
	default:
		if r.Output == "" {
			return "(no output)"
		}
		return TruncateOutput(r.Output, maxChars, TruncateHeadTail)
	}
}
