package presentation

import (
	"fmt"
	"time"
)

// FormatDuration renders an execution time the way the UI shows it:
// sub-second as milliseconds, under a minute as seconds with one decimal,
// longer as minutes and seconds.
func FormatDuration(d time.Duration) string {
	seconds := d.Seconds()
	switch {
	case seconds < 1:
		return fmt.Sprintf("%.0fms", seconds*1000)
	case seconds < 60:
		return fmt.Sprintf("%.1fs", seconds)
	default:
		minutes := int(seconds) / 60
		return fmt.Sprintf("%dm %.0fs", minutes, seconds-float64(minutes*60))
	}
}
