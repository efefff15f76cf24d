package util

import (
	"fmt"
	"time"
)

// FormatNumber formats an int with K/M suffix for readability.
// Examples: 500 -> "500", 1500 -> "1.5K", 1500000 -> "1.5M"
func FormatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatDuration renders a duration with second precision.
// Examples: 12s -> "12s", 92s -> "1m32s", 3845s -> "1h4m5s"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Truncate(time.Second).String()
}

// FormatClock renders a log timestamp as time of day.
// Chat log timestamps carry no date, so only the clock is meaningful.
func FormatClock(t time.Time) string {
	return t.Format("15:04:05")
}

// FormatRate renders a per-second rate with one decimal.
// Examples: 0 -> "0.0", 12.34 -> "12.3"
func FormatRate(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
