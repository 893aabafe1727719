package airquality

import (
	"fmt"
	"time"
)

// Window is the half-open interval [Start, End) a rollup aggregates over.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// PreviousHour returns the most recently completed hour relative to now, in UTC.
func PreviousHour(now time.Time) Window {
	end := now.UTC().Truncate(time.Hour)
	return Window{Start: end.Add(-time.Hour), End: end}
}

// PreviousDay returns the most recently completed UTC calendar day relative to now.
func PreviousDay(now time.Time) Window {
	n := now.UTC()
	end := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	return Window{Start: end.AddDate(0, 0, -1), End: end}
}
