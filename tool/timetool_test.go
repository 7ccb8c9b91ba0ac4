package tool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeToolFormats(t *testing.T) {
	fixed := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	tt := &TimeTool{now: func() time.Time { return fixed }}

	out, err := tt.Execute(context.Background(), map[string]any{
		"format": "2006-01-02", "timezone": "UTC",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14", out)

	out, err = tt.Execute(context.Background(), map[string]any{
		"format": "15:04:05", "timezone": "Asia/Shanghai",
	})
	require.NoError(t, err)
	assert.Equal(t, "17:26:53", out)
}

func TestTimeToolBadTimezone(t *testing.T) {
	tt := NewTimeTool()
	_, err := tt.Execute(context.Background(), map[string]any{"timezone": "Mars/Olympus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown timezone")
}
