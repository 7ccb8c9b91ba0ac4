package tool

import (
	"context"
	"fmt"
	"time"
)

// TimeTool reports the current time. The clock is injectable for tests.
type TimeTool struct {
	now func() time.Time
}

// NewTimeTool creates a TimeTool using the system clock.
func NewTimeTool() *TimeTool {
	return &TimeTool{now: time.Now}
}

func (t *TimeTool) Name() string { return "current_time" }

func (t *TimeTool) Description() string {
	return "Get the current date and time. Parameters: format (Go time layout, default \"2006-01-02 15:04:05\"), timezone (IANA name like \"Asia/Shanghai\", default local)."
}

func (t *TimeTool) Schema() map[string]any {
	return ObjectSchema(map[string]any{
		"format":   StringProp("Go time layout string, e.g. \"2006-01-02 15:04:05\""),
		"timezone": StringProp("IANA timezone name, e.g. \"UTC\" or \"Asia/Shanghai\""),
	})
}

func (t *TimeTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	layout := "2006-01-02 15:04:05 MST"
	if f, ok := StringArg(args, "format"); ok && f != "" {
		layout = f
	}

	now := t.now()
	if tz, ok := StringArg(args, "timezone"); ok && tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return "", fmt.Errorf("unknown timezone %q: %w", tz, err)
		}
		now = now.In(loc)
	}

	return now.Format(layout), nil
}
