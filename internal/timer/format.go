package timer

import "fmt"

// FormatClock renders seconds as mm:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatRemaining returns a human-friendly duration for status lines.
// Rounds to the nearest minute once there's at least 1 minute left.
func FormatRemaining(seconds int) string {
	if seconds < 60 {
		if seconds == 1 {
			return "1 second"
		}
		if seconds < 0 {
			seconds = 0
		}
		return fmt.Sprintf("%d seconds", seconds)
	}
	m := (seconds + 30) / 60
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
