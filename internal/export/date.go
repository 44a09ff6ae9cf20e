package export

import (
	"fmt"
	"log/slog"
	"time"
)

// ResolveReportDate returns the day to export. An explicit override
// wins after YYYY-MM-DD validation. Otherwise "yesterday" relative to
// now, computed in tz when set so the day boundary matches the date
// expression used in the queries. A bad zone name falls back to UTC
// with a warning rather than failing the run.
func ResolveReportDate(override, tz string, now time.Time) (time.Time, error) {
	if override != "" {
		d, err := time.Parse("2006-01-02", override)
		if err != nil {
			return time.Time{}, fmt.Errorf("export date must be YYYY-MM-DD: %w", err)
		}
		return d, nil
	}

	loc := time.UTC
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			slog.Warn("invalid time zone, falling back to UTC for date math", "tz", tz, "error", err)
		} else {
			loc = l
		}
	}

	y := now.In(loc).AddDate(0, 0, -1)
	return time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, time.UTC), nil
}
