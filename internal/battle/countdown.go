package battle

import (
	"fmt"
	"time"
)

// Countdown derives remaining battle time from the shared start anchor.
// The end instant is fixed at StartMillis + Duration; remaining time is always
// recomputed from it rather than decremented, so ticks cannot drift or go
// negative under clock skew.
type Countdown struct {
	StartMillis int64 // epoch ms; zero means the battle has not started
	Duration    time.Duration
}

// Remaining returns the time left at now, clamped at zero. Before the start
// anchor is known it returns the full configured duration as a placeholder.
func (c Countdown) Remaining(now time.Time) time.Duration {
	if c.StartMillis == 0 {
		return c.Duration
	}
	end := time.UnixMilli(c.StartMillis).Add(c.Duration)
	left := end.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Expired reports whether the battle clock has run out.
func (c Countdown) Expired(now time.Time) bool {
	return c.StartMillis != 0 && c.Remaining(now) == 0
}

// FormatClock renders a duration as HH:MM:SS, truncated to whole seconds.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
