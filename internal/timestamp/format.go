package timestamp

import (
	"fmt"
	"math"
)

// FormatTimestamp renders seconds as a fixed-width "HH:MM:SS.mmm" string,
// with milliseconds truncated toward zero. Used in logs only.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	totalMs := int64(math.Trunc(seconds * 1000))

	const (
		msPerSec  = 1000
		msPerMin  = 60 * msPerSec
		msPerHour = 60 * msPerMin
	)

	h := totalMs / msPerHour
	m := (totalMs % msPerHour) / msPerMin
	s := (totalMs % msPerMin) / msPerSec
	ms := totalMs % msPerSec

	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
