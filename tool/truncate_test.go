package tool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateOutputUnderLimit(t *testing.T) {
	out := TruncateOutput("short", 100, TruncateHeadTail)
	assert.Equal(t, "short", out)
}

func TestTruncateOutputHeadTail(t *testing.T) {
	long := strings.Repeat("a", 500) + strings.Repeat("z", 500)
	out := TruncateOutput(long, 200, TruncateHeadTail)

	assert.Contains(t, out, "truncated")
	assert.True(t, strings.HasPrefix(out, "aaaa"))
	assert.True(t, strings.HasSuffix(out, "zzzz"))
	assert.Less(t, len(out), len(long))
}

func TestTruncateOutputTail(t *testing.T) {
	long := strings.Repeat("a", 500) + strings.Repeat("z", 500)
	out := TruncateOutput(long, 200, TruncateTail)

	assert.Contains(t, out, "first 800 characters removed")
	assert.True(t, strings.HasSuffix(out, "zzzz"))
	assert.NotContains(t, out[len(out)-200:], "a")
}

func TestTruncateLines(t *testing.T) {
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = "line"
	}
	out := TruncateLines(strings.Join(lines, "\n"), 10)
	assert.Contains(t, out, "90 lines omitted")

	short := "a\nb\nc"
	assert.Equal(t, short, TruncateLines(short, 10))
}

func TestFormatResult(t *testing.T) {
	ok := Result{Status: StatusSuccess, Output: "all good"}
	assert.Equal(t, "all good", FormatResult(ok, 0))

	empty := Result{Status: StatusSuccess}
	assert.Equal(t, "(no output)", FormatResult(empty, 0))

	failed := Result{Status: StatusError, ErrorMessage: "boom"}
	assert.Equal(t, "Error: boom", FormatResult(failed, 0))

	timedOut := Result{Status: StatusTimeout, ErrorMessage: "tool execution timed out after 30s"}
	assert.Equal(t, "Error: tool execution timed out after 30s", FormatResult(timedOut, 0))

	big := Result{Status: StatusSuccess, Output: strings.Repeat("x", 100)}
	assert.Less(t, len(FormatResult(big, 50))-len("[truncated"), 120)
}
